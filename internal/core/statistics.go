package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ExpenseStatistic is one category's share of a transaction set. It is
// derived on every request and never stored.
type ExpenseStatistic struct {
	CategoryID int64
	Category   string
	Amount     decimal.Decimal // sum of absolute amounts
	Net        decimal.Decimal // signed sum, decides the sort bucket
	Percentage float64         // 0-100 of the absolute total
	IconRef    string
	Color      Color
}

var hundred = decimal.NewFromInt(100)

// ComputeStatistics groups txs by category identity and returns each group's
// absolute sum and percentage of the absolute total.
//
// Entries without a resolved category (ID 0) are skipped entirely. Groups
// whose signed sum is non-negative come first, then larger sums first; equal
// keys keep first-appearance order.
func ComputeStatistics(txs []TransactionWithCategory) []ExpenseStatistic {
	if len(txs) == 0 {
		return []ExpenseStatistic{}
	}

	total := decimal.Zero
	order := make([]int64, 0)
	groups := make(map[int64]*ExpenseStatistic)

	for _, twc := range txs {
		cat := twc.Category
		if cat.ID == 0 {
			continue
		}
		abs := twc.Transaction.Amount.Abs()
		total = total.Add(abs)

		g, ok := groups[cat.ID]
		if !ok {
			g = &ExpenseStatistic{
				CategoryID: cat.ID,
				Category:   cat.Name,
				Amount:     decimal.Zero,
				Net:        decimal.Zero,
				IconRef:    ResolveIcon(cat.IconRef),
				Color:      cat.Color,
			}
			groups[cat.ID] = g
			order = append(order, cat.ID)
		}
		g.Amount = g.Amount.Add(abs)
		g.Net = g.Net.Add(twc.Transaction.Amount)
	}

	out := make([]ExpenseStatistic, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if !total.IsZero() {
			g.Percentage = g.Amount.Div(total).Mul(hundred).InexactFloat64()
		}
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := out[i].Net.IsNegative(), out[j].Net.IsNegative()
		if ni != nj {
			return !ni
		}
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
