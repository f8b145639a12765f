package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/live"
)

func scenario(t *testing.T, f *fixture) (salary, bills, food core.Category) {
	t.Helper()
	salary = f.category(t, "Salary")
	bills = f.category(t, "Bills")
	food = f.category(t, "Food")
	f.create(t, salary, "A", core.Income, "500", "01 01 2025")
	f.create(t, bills, "B", core.Expense, "200", "02 01 2025")
	f.create(t, food, "C", core.Expense, "100", "01 06 2025")
	return
}

func await[T any](t *testing.T, ch <-chan live.Update[T]) T {
	t.Helper()
	select {
	case u := <-ch:
		require.NoError(t, u.Err)
		return u.Value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed")
	}
	var zero T
	return zero
}

func TestTotalsScenario(t *testing.T) {
	f := newFixture(t)
	scenario(t, f)
	ctx := context.Background()

	sum, err := f.aggregator.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Balance.Equal(decimal.NewFromInt(200)), sum.Balance.String())
	assert.True(t, sum.Income.Equal(decimal.NewFromInt(500)), sum.Income.String())
	assert.True(t, sum.Expense.Equal(decimal.NewFromInt(-300)), sum.Expense.String())
	assert.True(t, sum.Income.Sub(sum.Expense.Abs()).Equal(sum.Balance))
	assert.Equal(t, "05 08 2025", sum.Today)
	assert.True(t, sum.TodayExpense.IsZero())

	jan, err := f.store.TransactionsByMonthYear(ctx, "01", "2025")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, titles(jan))
}

func TestStatisticsScenario(t *testing.T) {
	f := newFixture(t)
	scenario(t, f)

	stats, err := f.aggregator.StatisticsFor(context.Background(), "", "", core.ExpenseOnly)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Bills", stats[0].Category)
	assert.Equal(t, "Food", stats[1].Category)
	assert.InDelta(t, 66.67, stats[0].Percentage, 0.01)
	assert.InDelta(t, 33.33, stats[1].Percentage, 0.01)
	assert.InDelta(t, 100, stats[0].Percentage+stats[1].Percentage, 1e-9)

	jan, err := f.aggregator.StatisticsFor(context.Background(), "01", "2025", core.AnyType)
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "Salary", jan[0].Category, "non-negative groups sort first")
	assert.True(t, math.Abs(jan[0].Percentage-500.0/7) < 1e-9)
}

func TestFeedsReEmitAfterWrites(t *testing.T) {
	f := newFixture(t)
	_, _, food := scenario(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	balance := f.aggregator.TotalBalance().Subscribe(ctx)
	today := f.aggregator.TodayExpense("05 08 2025").Subscribe(ctx)
	all := f.aggregator.AllTransactions().Subscribe(ctx)

	assert.Equal(t, "200", await(t, balance).String())
	assert.True(t, await(t, today).IsZero())
	assert.Equal(t, []string{"C", "B", "A"}, titles(await(t, all)))

	f.create(t, food, "D", core.Expense, "25.5", "05 08 2025")

	require.Eventually(t, func() bool {
		u, ok := f.aggregator.TotalBalance().Latest()
		return ok && u.Value.Equal(decimal.RequireFromString("174.5"))
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		u, ok := f.aggregator.TodayExpense("05 08 2025").Latest()
		return ok && u.Value.Equal(decimal.RequireFromString("-25.5"))
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		u, ok := f.aggregator.AllTransactions().Latest()
		return ok && len(u.Value) == 4 && u.Value[0].Transaction.Title == "D"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestParameterisedFeedsAreShared(t *testing.T) {
	f := newFixture(t)
	assert.Same(t, f.aggregator.ByMonthYear("01", "2025"), f.aggregator.ByMonthYear("01", "2025"))
	assert.NotSame(t, f.aggregator.ByMonthYear("01", "2025"), f.aggregator.ByMonthYear("02", "2025"))
	assert.Same(t, f.aggregator.Statistics("", "", core.AnyType), f.aggregator.Statistics("", "", core.AnyType))
	assert.Same(t, f.aggregator.Filtered(core.Filter{Window: core.Today}), f.aggregator.Filtered(core.Filter{Window: core.Today}))
}

func TestFilteredFeed(t *testing.T) {
	f := newFixture(t)
	_, _, food := scenario(t, f)
	f.create(t, food, "today", core.Expense, "4", "05 08 2025")
	f.create(t, food, "yesterday", core.Expense, "4", "04 08 2025")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := await(t, f.aggregator.Filtered(core.Filter{Window: core.Today}).Subscribe(ctx))
	assert.Equal(t, []string{"today"}, titles(got))

	year, err := f.aggregator.FilteredTransactions(ctx, core.Filter{Window: core.ThisYear, Type: core.ExpenseOnly, Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, []string{"today", "yesterday", "C"}, titles(year))
}

func TestByMonthYearFeedSkipsUnpaddedDates(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	f.create(t, food, "padded", core.Expense, "1", "05 08 2025")
	f.create(t, food, "unpadded", core.Expense, "1", "05 8 2025")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := await(t, f.aggregator.ByMonthYear("08", "2025").Subscribe(ctx))
	assert.Equal(t, []string{"padded"}, titles(got))
}
