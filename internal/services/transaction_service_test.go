package services

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

func TestCreateAppliesSignAndDefaults(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")

	tx, err := f.transactions.Create(context.Background(), core.Entry{
		CategoryID: food.ID, Title: "  pizza ", Type: core.Expense, Amount: "12,50",
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, "pizza", tx.Title)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-12.5")), tx.Amount.String())
	assert.Equal(t, "05 08 2025", tx.Date)
	assert.Equal(t, "02:30 PM", tx.Time)

	income, err := f.transactions.Create(context.Background(), core.Entry{
		CategoryID: food.ID, Title: "refund", Type: core.Income, Amount: "3",
	})
	require.NoError(t, err)
	assert.True(t, income.Amount.IsPositive())
	assert.Equal(t, []ledger.ChangeKind{ledger.CategoryCreated, ledger.TransactionCreated, ledger.TransactionCreated}, f.publisher.Kinds())
}

func TestCreateRejectsInvalidEntries(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	ctx := context.Background()

	cases := []struct {
		name  string
		entry core.Entry
		field string
	}{
		{"no category", core.Entry{Title: "x", Amount: "1"}, "category"},
		{"blank title", core.Entry{CategoryID: food.ID, Title: "  ", Amount: "1"}, "title"},
		{"zero amount", core.Entry{CategoryID: food.ID, Title: "x", Amount: "0"}, "amount"},
		{"negative amount", core.Entry{CategoryID: food.ID, Title: "x", Amount: "-4"}, "amount"},
		{"text amount", core.Entry{CategoryID: food.ID, Title: "x", Amount: "ten"}, "amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transactions.Create(ctx, tc.entry)
			require.Error(t, err)
			assert.True(t, isValidation(err, tc.field), "got %v", err)
		})
	}

	all, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected entries must not reach the store")
}

func TestUpdateKeepsDateAndReportsMissing(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	ctx := context.Background()
	tx := f.create(t, food, "lunch", core.Expense, "10", "01 02 2025")

	updated, err := f.transactions.Update(ctx, tx.ID, core.Entry{
		CategoryID: food.ID, Title: "salary", Type: core.Income, Amount: "2000",
	})
	require.NoError(t, err)
	assert.Equal(t, "01 02 2025", updated.Date)

	got, ok, err := f.transactions.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "salary", got.Transaction.Title)
	assert.True(t, got.Transaction.Amount.Equal(decimal.NewFromInt(2000)))

	_, err = f.transactions.Update(ctx, tx.ID+99, core.Entry{
		CategoryID: food.ID, Title: "ghost", Type: core.Income, Amount: "1", Date: "01 01 2025",
	})
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestUpdateKeepsDateOfTransactionWithDeletedCategory(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	pets := f.category(t, "Pets")
	ctx := context.Background()
	tx := f.create(t, pets, "vet", core.Expense, "40", "01 01 2020")

	require.NoError(t, f.categories.Delete(ctx, pets))

	updated, err := f.transactions.Update(ctx, tx.ID, core.Entry{
		CategoryID: food.ID, Title: "vet", Type: core.Expense, Amount: "40",
	})
	require.NoError(t, err)
	assert.Equal(t, "01 01 2020", updated.Date)
	assert.Equal(t, tx.Time, updated.Time)

	got, ok, err := f.transactions.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.True(t, ok, "moving to a live category makes the row visible again")
	assert.Equal(t, "01 01 2020", got.Transaction.Date)
	assert.Equal(t, "Food", got.Category.Name)
}

func TestDeleteTransaction(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	ctx := context.Background()
	tx := f.create(t, food, "lunch", core.Expense, "10", "01 02 2025")

	require.NoError(t, f.transactions.Delete(ctx, tx.ID))
	_, ok, err := f.transactions.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, f.publisher.Kinds(), ledger.TransactionDeleted)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	f.publisher.err = errors.New("broker down")

	tx, err := f.transactions.Create(context.Background(), core.Entry{
		CategoryID: food.ID, Title: "coffee", Type: core.Expense, Amount: "2",
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
}
