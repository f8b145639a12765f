// Package ledgertest holds the behavioural checks every ledger.Store
// implementation must pass.
package ledgertest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) ledger.Store

func RunStoreTests(t *testing.T, newStore Factory) {
	t.Run("CategoryOrder", func(t *testing.T) { testCategoryOrder(t, newStore(t)) })
	t.Run("CategoryByName", func(t *testing.T) { testCategoryByName(t, newStore(t)) })
	t.Run("Aggregates", func(t *testing.T) { testAggregates(t, newStore(t)) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, newStore(t)) })
	t.Run("MonthYear", func(t *testing.T) { testMonthYear(t, newStore(t)) })
	t.Run("OrphanedTransactions", func(t *testing.T) { testOrphaned(t, newStore(t)) })
	t.Run("UpdateAndDelete", func(t *testing.T) { testUpdateDelete(t, newStore(t)) })
	t.Run("DeleteAll", func(t *testing.T) { testDeleteAll(t, newStore(t)) })
}

func mustCategory(t *testing.T, s ledger.Store, name string, custom bool) core.Category {
	t.Helper()
	c, err := s.InsertCategory(context.Background(), core.Category{
		Name: name, IconRef: "category", Color: core.PackARGB(0xFF795548), IsCustom: custom,
	})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	return c
}

func mustTransaction(t *testing.T, s ledger.Store, cat core.Category, title, amount, date string) core.Transaction {
	t.Helper()
	typ := core.Income
	if decimal.RequireFromString(amount).IsNegative() {
		typ = core.Expense
	}
	tx, err := s.InsertTransaction(context.Background(), core.Transaction{
		CategoryID: cat.ID, Title: title, Type: typ, Time: "10:00 AM",
		Amount: decimal.RequireFromString(amount), Date: date,
	})
	require.NoError(t, err)
	require.NotZero(t, tx.ID)
	return tx
}

func titles(txs []core.TransactionWithCategory) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.Transaction.Title
	}
	return out
}

func testCategoryOrder(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	mustCategory(t, s, "Food", false)
	mustCategory(t, s, "Pets", true)
	mustCategory(t, s, "Bills", false)
	mustCategory(t, s, "Garden", true)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Pets", "Garden", "Food", "Bills"}, names)
	assert.Equal(t, core.PackARGB(0xFF795548), cats[0].Color)
}

func testCategoryByName(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	first := mustCategory(t, s, "Food", false)
	mustCategory(t, s, "Food", true)

	got, ok, err := s.CategoryByName(ctx, "Food")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	_, ok, err = s.CategoryByName(ctx, "food")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testAggregates(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	cat := mustCategory(t, s, "Food", false)

	zero, err := s.SumAmounts(ctx)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	mustTransaction(t, s, cat, "A", "500", "01 01 2025")
	mustTransaction(t, s, cat, "B", "-200", "02 01 2025")
	mustTransaction(t, s, cat, "C", "-100.25", "01 06 2025")

	balance, err := s.SumAmounts(ctx)
	require.NoError(t, err)
	income, err := s.SumIncome(ctx)
	require.NoError(t, err)
	expense, err := s.SumExpense(ctx)
	require.NoError(t, err)
	day, err := s.SumExpenseOn(ctx, "02 01 2025")
	require.NoError(t, err)
	none, err := s.SumExpenseOn(ctx, "01 01 2025")
	require.NoError(t, err)

	assert.True(t, balance.Equal(decimal.RequireFromString("199.75")), balance.String())
	assert.True(t, income.Equal(decimal.NewFromInt(500)), income.String())
	assert.True(t, expense.Equal(decimal.RequireFromString("-300.25")), expense.String())
	assert.True(t, day.Equal(decimal.NewFromInt(-200)), day.String())
	assert.True(t, none.IsZero(), none.String())
	assert.True(t, income.Add(expense).Equal(balance))
}

func testOrdering(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	cat := mustCategory(t, s, "Food", false)
	mustTransaction(t, s, cat, "jan-2025", "-1", "15 01 2025")
	mustTransaction(t, s, cat, "dec-2024", "-1", "31 12 2024")
	mustTransaction(t, s, cat, "jan-2025-later", "-1", "20 01 2025")
	mustTransaction(t, s, cat, "jan-2025-same", "-1", "15 01 2025")

	all, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"jan-2025-later", "jan-2025-same", "jan-2025", "dec-2024"}, titles(all))
	assert.Equal(t, "Food", all[0].Category.Name)
}

func testMonthYear(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	cat := mustCategory(t, s, "Food", false)
	mustTransaction(t, s, cat, "A", "500", "01 01 2025")
	mustTransaction(t, s, cat, "B", "-200", "02 01 2025")
	mustTransaction(t, s, cat, "C", "-100", "01 06 2025")
	mustTransaction(t, s, cat, "padded", "-1", "05 08 2025")
	mustTransaction(t, s, cat, "unpadded", "-1", "05 8 2025")

	jan, err := s.TransactionsByMonthYear(ctx, "01", "2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(jan))

	aug, err := s.TransactionsByMonthYear(ctx, "08", "2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"padded"}, titles(aug))
}

func testOrphaned(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	keep := mustCategory(t, s, "Food", false)
	gone := mustCategory(t, s, "Pets", true)
	mustTransaction(t, s, keep, "kept", "-5", "01 01 2025")
	orphan := mustTransaction(t, s, gone, "orphan", "-7", "01 01 2025")

	require.NoError(t, s.DeleteCategory(ctx, gone.ID))

	all, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, titles(all))

	_, ok, err := s.TransactionByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	row, ok, err := s.TransactionRow(ctx, orphan.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orphan", row.Title)
	assert.Equal(t, "01 01 2025", row.Date)
	assert.Equal(t, gone.ID, row.CategoryID)

	_, ok, err = s.TransactionRow(ctx, orphan.ID+99)
	require.NoError(t, err)
	assert.False(t, ok)

	// The row itself survives and still counts in the aggregates.
	balance, err := s.SumAmounts(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(-12)), balance.String())
}

func testUpdateDelete(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	cat := mustCategory(t, s, "Food", false)
	tx := mustTransaction(t, s, cat, "lunch", "-12.5", "01 02 2025")

	tx.Title = "dinner"
	tx.Amount = decimal.RequireFromString("-30")
	tx.Note = "with friends"
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	got, ok, err := s.TransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dinner", got.Transaction.Title)
	assert.Equal(t, "with friends", got.Transaction.Note)
	assert.True(t, got.Transaction.Amount.Equal(decimal.NewFromInt(-30)))
	assert.Equal(t, core.Expense, got.Transaction.Type)

	missing := tx
	missing.ID = tx.ID + 1000
	err = s.UpdateTransaction(ctx, missing)
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)

	require.NoError(t, s.DeleteTransaction(ctx, tx.ID))
	_, ok, err = s.TransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testDeleteAll(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	cat := mustCategory(t, s, "Food", false)
	mustTransaction(t, s, cat, "A", "1", "01 01 2025")

	require.NoError(t, s.DeleteAllTransactions(ctx))
	require.NoError(t, s.DeleteAllCategories(ctx))

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
