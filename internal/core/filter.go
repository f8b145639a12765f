package core

import (
	"sort"
	"strings"
	"time"
)

const (
	AllTime TimeWindow = iota
	Today
	Last7Days
	Last30Days
	Last90Days
	ThisYear
)

const (
	AnyType TypeFilter = iota
	IncomeOnly
	ExpenseOnly
)

type (
	// TimeWindow is a named relative date range.
	TimeWindow int

	// TypeFilter keeps income (amount > 0), expense (amount < 0) or both.
	TypeFilter int

	// Filter is the client-side selection applied to the joined list.
	// An empty Category keeps every category.
	Filter struct {
		Window   TimeWindow
		Type     TypeFilter
		Category string
	}
)

var windowLabels = map[TimeWindow]string{
	AllTime:    "All",
	Today:      "Today",
	Last7Days:  "7 days",
	Last30Days: "30 days",
	Last90Days: "90 days",
	ThisYear:   "This Year",
}

func (w TimeWindow) String() string {
	if l, ok := windowLabels[w]; ok {
		return l
	}
	return "All"
}

// ParseTimeWindow accepts the display labels ("Today", "7 days", "This Year")
// and compact forms ("today", "7d", "30d", "90d", "year", "all").
func ParseTimeWindow(s string) (TimeWindow, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllTime, true
	case "today", "0d":
		return Today, true
	case "7 days", "7d":
		return Last7Days, true
	case "30 days", "30d":
		return Last30Days, true
	case "90 days", "90d":
		return Last90Days, true
	case "this year", "year":
		return ThisYear, true
	}
	return AllTime, false
}

// Cutoff returns the earliest calendar date kept by w, given now.
// The boundary date itself is included.
func (w TimeWindow) Cutoff(now time.Time) (time.Time, bool) {
	today := startOfDay(now)
	switch w {
	case Today:
		return today, true
	case Last7Days:
		return today.AddDate(0, 0, -7), true
	case Last30Days:
		return today.AddDate(0, 0, -30), true
	case Last90Days:
		return today.AddDate(0, 0, -90), true
	case ThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), true
	}
	return time.Time{}, false
}

func (f TypeFilter) String() string {
	switch f {
	case IncomeOnly:
		return "Income"
	case ExpenseOnly:
		return "Expense"
	}
	return "All"
}

// ParseTypeFilter accepts "All", "Income" and "Expense" in any case.
func ParseTypeFilter(s string) (TypeFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AnyType, true
	case "income":
		return IncomeOnly, true
	case "expense":
		return ExpenseOnly, true
	}
	return AnyType, false
}

// Keep reports whether a transaction with this amount passes the type filter.
func (f TypeFilter) Keep(t Transaction) bool {
	switch f {
	case IncomeOnly:
		return t.IsIncome()
	case ExpenseOnly:
		return t.IsExpense()
	}
	return true
}

// ForgetCategory clears the category selection when it names a category
// that has just been deleted.
func (f Filter) ForgetCategory(deleted Category) Filter {
	if f.Category != "" && f.Category == deleted.Name {
		f.Category = ""
	}
	return f
}

// FilterTransactions applies the time window, type and category filters in
// that order and sorts the result newest first.
//
// Dates that do not parse as tokens are dropped by any time window other than
// AllTime and sort as the oldest possible date. Equal dates keep input order.
// The input slice is not modified.
func FilterTransactions(all []TransactionWithCategory, f Filter, now time.Time) []TransactionWithCategory {
	loc := now.Location()
	out := make([]TransactionWithCategory, 0, len(all))

	cutoff, windowed := f.Window.Cutoff(now)
	category := strings.TrimSpace(f.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	for _, twc := range all {
		if windowed {
			d, ok := ParseDate(twc.Transaction.Date, loc)
			if !ok || d.Before(cutoff) {
				continue
			}
		}
		if !f.Type.Keep(twc.Transaction) {
			continue
		}
		if category != "" && twc.Category.Name != category {
			continue
		}
		out = append(out, twc)
	}

	SortNewestFirst(out, loc)
	return out
}

// SortNewestFirst sorts by parsed date descending; unparseable dates sort last.
func SortNewestFirst(txs []TransactionWithCategory, loc *time.Location) {
	keys := make([]time.Time, len(txs))
	valid := make([]bool, len(txs))
	for i, twc := range txs {
		keys[i], valid[i] = ParseDate(twc.Transaction.Date, loc)
	}
	idx := make([]int, len(txs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		switch {
		case valid[ia] && !valid[ib]:
			return true
		case !valid[ia]:
			return false
		}
		return keys[ia].After(keys[ib])
	})
	sorted := make([]TransactionWithCategory, len(txs))
	for i, j := range idx {
		sorted[i] = txs[j]
	}
	copy(txs, sorted)
}
