// Package ledger defines the store capabilities the engine consumes and the
// in-process change notifications that drive live views.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// CategoryStore persists category rows.
type CategoryStore interface {
	// ListCategories returns custom categories first, then defaults, each
	// group in insertion order.
	ListCategories(ctx context.Context) ([]core.Category, error)
	InsertCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	// CategoryByName returns the first category with exactly this name.
	CategoryByName(ctx context.Context, name string) (core.Category, bool, error)
	DeleteAllCategories(ctx context.Context) error
}

// TransactionStore persists transaction rows and answers the joined and
// aggregate queries. Joined reads omit transactions whose category is gone.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	// UpdateTransaction returns core.ErrNotFound when no row has t.ID.
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	DeleteAllTransactions(ctx context.Context) error

	TransactionByID(ctx context.Context, id int64) (core.TransactionWithCategory, bool, error)
	// TransactionRow reads the stored row even when its category is gone.
	TransactionRow(ctx context.Context, id int64) (core.Transaction, bool, error)
	// ListTransactions is ordered newest date first, ties by id descending.
	ListTransactions(ctx context.Context) ([]core.TransactionWithCategory, error)
	// TransactionsByMonthYear matches characters 4-5 and 7-10 of the date
	// token against month and year textually.
	TransactionsByMonthYear(ctx context.Context, month, year string) ([]core.TransactionWithCategory, error)

	SumAmounts(ctx context.Context) (decimal.Decimal, error)
	SumIncome(ctx context.Context) (decimal.Decimal, error)
	SumExpense(ctx context.Context) (decimal.Decimal, error)
	SumExpenseOn(ctx context.Context, date string) (decimal.Decimal, error)
}

// Store is the full ledger capability set.
type Store interface {
	CategoryStore
	TransactionStore
}
