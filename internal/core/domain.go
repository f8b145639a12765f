package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = 0
	Expense TransactionType = 1
)

type (
	// TransactionType is informational; the sign of Amount is authoritative.
	TransactionType int

	// Color is a packed 64-bit color value with ARGB in the upper 32 bits.
	Color uint64

	Category struct {
		ID       int64 // 0 means not yet stored
		Name     string
		IconRef  string
		Color    Color
		IsCustom bool
	}

	Transaction struct {
		ID         int64 // 0 means not yet stored
		CategoryID int64
		Title      string
		Type       TransactionType
		Time       string          // "hh:mm AM/PM", display only
		Amount     decimal.Decimal // positive income, negative expense
		Date       string          // "dd MM yyyy"
		Note       string
	}

	// TransactionWithCategory is a transaction joined to its category.
	// Transactions whose category no longer exists have no joined form.
	TransactionWithCategory struct {
		Transaction Transaction
		Category    Category
	}
)

func (t TransactionType) String() string {
	switch t {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType accepts "income"/"expense" (any case) or "0"/"1".
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "0":
		return Income, nil
	case "expense", "1":
		return Expense, nil
	}
	return 0, &ValidationError{Field: "type", Err: ErrInvalidType}
}

// SignedAmount applies the sign convention of t to a positive magnitude.
func (t TransactionType) SignedAmount(magnitude decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return magnitude.Abs().Neg()
	}
	return magnitude.Abs()
}

// PackARGB packs a 32-bit ARGB value the way the color catalog stores it.
func PackARGB(argb uint32) Color {
	return Color(uint64(argb) << 32)
}

// ARGB returns the 32-bit ARGB value.
func (c Color) ARGB() uint32 {
	return uint32(uint64(c) >> 32)
}

// Hex renders the color as #AARRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%08X", c.ARGB())
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the transaction subtracts from the balance.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// ParseColor accepts "#AARRGGBB" or "#RRGGBB" (the leading # is optional);
// six digits mean fully opaque.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 6 {
		h = "FF" + h
	}
	if len(h) != 8 {
		return 0, fmt.Errorf("color %q: want #AARRGGBB or #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return PackARGB(uint32(v)), nil
}
