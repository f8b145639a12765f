package core

import "github.com/shopspring/decimal"

// Summary is a point-in-time read of the dashboard totals.
type Summary struct {
	Balance      decimal.Decimal
	Income       decimal.Decimal
	Expense      decimal.Decimal // negative or zero
	TodayExpense decimal.Decimal // negative or zero
	Today        string          // date token the today figure was computed for
}
