package core

// FallbackIcon is used for icon keys the catalog does not know.
const FallbackIcon = "category"

var iconCatalog = map[string]struct{}{}

func init() {
	for _, k := range []string{
		// financial
		"credit_card", "account_balance", "local_atm", "payment", "savings",
		"account_balance_wallet", "request_quote", "attach_money", "money_off", "monetization_on",
		// transport
		"directions_car", "local_gas_station", "flight", "train", "directions_bus",
		"two_wheeler", "local_taxi", "sailing", "pedal_bike",
		// food
		"restaurant", "shopping_cart", "local_cafe", "fastfood", "local_pizza",
		"local_bar", "icecream", "cake",
		// entertainment
		"movie", "music_note", "sports_esports", "theater_comedy", "sports_soccer",
		"casino", "celebration", "nightlife",
		// health
		"local_hospital", "fitness_center", "healing", "local_pharmacy", "favorite",
		"medical_services", "coronavirus",
		// home
		"home", "electric_bolt", "water_drop", "wifi", "cleaning_services",
		"checkroom", "bed", "kitchen",
		// personal
		"shopping_bag", "school", "work", "phone", "pets", "category",
		"child_care", "spa", "emoji_people", "face",
		// investment
		"trending_up", "show_chart", "pie_chart", "insights", "real_estate_agent", "bar_chart",
		// income
		"paid", "card_giftcard", "redeem",
	} {
		iconCatalog[k] = struct{}{}
	}
}

// ResolveIcon returns ref when the catalog knows it and FallbackIcon otherwise.
func ResolveIcon(ref string) string {
	if _, ok := iconCatalog[ref]; ok {
		return ref
	}
	return FallbackIcon
}

// DefaultCategories returns the seed set in insertion order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Food", IconRef: "restaurant", Color: PackARGB(0xFFFF5722)},
		{Name: "Transport", IconRef: "directions_car", Color: PackARGB(0xFF2196F3)},
		{Name: "Shopping", IconRef: "shopping_cart", Color: PackARGB(0xFF4CAF50)},
		{Name: "Bills", IconRef: "electric_bolt", Color: PackARGB(0xFFFF9800)},
		{Name: "Entertainment", IconRef: "movie", Color: PackARGB(0xFF9C27B0)},
		{Name: "Health", IconRef: "local_hospital", Color: PackARGB(0xFFF44336)},
		{Name: "Education", IconRef: "school", Color: PackARGB(0xFF607D8B)},
		{Name: "Other", IconRef: "category", Color: PackARGB(0xFF795548)},
	}
}
