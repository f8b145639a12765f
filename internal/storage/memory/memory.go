// Package memory is a process-local ledger store used for development and
// tests. It follows the same ordering and join rules as the SQL stores.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

type Store struct {
	mu      sync.Mutex
	nextCat int64
	nextTx  int64
	cats    []core.Category
	txs     []core.Transaction
}

func New() *Store {
	return &Store{}
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.cats...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsCustom != out[j].IsCustom {
			return out[i].IsCustom
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) InsertCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCat++
	c.ID = s.nextCat
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cats {
		if c.ID == id {
			s.cats = append(s.cats[:i], s.cats[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) CategoryByName(_ context.Context, name string) (core.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cats {
		if c.Name == name {
			return c, true, nil
		}
	}
	return core.Category{}, false, nil
}

func (s *Store) DeleteAllCategories(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = nil
	return nil
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTx++
	t.ID = s.nextTx
	s.txs = append(s.txs, t)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == t.ID {
			s.txs[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.txs {
		if t.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) DeleteAllTransactions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = nil
	return nil
}

func (s *Store) TransactionByID(_ context.Context, id int64) (core.TransactionWithCategory, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txs {
		if t.ID != id {
			continue
		}
		c, ok := s.categoryLocked(t.CategoryID)
		if !ok {
			return core.TransactionWithCategory{}, false, nil
		}
		return core.TransactionWithCategory{Transaction: t, Category: c}, true, nil
	}
	return core.TransactionWithCategory{}, false, nil
}

func (s *Store) TransactionRow(_ context.Context, id int64) (core.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txs {
		if t.ID == id {
			return t, true, nil
		}
	}
	return core.Transaction{}, false, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.TransactionWithCategory, error) {
	return s.joined(func(core.Transaction) bool { return true }), nil
}

func (s *Store) TransactionsByMonthYear(_ context.Context, month, year string) ([]core.TransactionWithCategory, error) {
	return s.joined(func(t core.Transaction) bool {
		return core.MatchesMonthYear(t.Date, month, year)
	}), nil
}

func (s *Store) SumAmounts(_ context.Context) (decimal.Decimal, error) {
	return s.sum(func(core.Transaction) bool { return true }), nil
}

func (s *Store) SumIncome(_ context.Context) (decimal.Decimal, error) {
	return s.sum(core.Transaction.IsIncome), nil
}

func (s *Store) SumExpense(_ context.Context) (decimal.Decimal, error) {
	return s.sum(core.Transaction.IsExpense), nil
}

func (s *Store) SumExpenseOn(_ context.Context, date string) (decimal.Decimal, error) {
	return s.sum(func(t core.Transaction) bool { return t.IsExpense() && t.Date == date }), nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) categoryLocked(id int64) (core.Category, bool) {
	for _, c := range s.cats {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func (s *Store) joined(keep func(core.Transaction) bool) []core.TransactionWithCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TransactionWithCategory, 0, len(s.txs))
	for _, t := range s.txs {
		if !keep(t) {
			continue
		}
		c, ok := s.categoryLocked(t.CategoryID)
		if !ok {
			continue
		}
		out = append(out, core.TransactionWithCategory{Transaction: t, Category: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Transaction, out[j].Transaction
		if c := core.CompareDateTokens(a.Date, b.Date); c != 0 {
			return c > 0
		}
		return a.ID > b.ID
	})
	return out
}

func (s *Store) sum(keep func(core.Transaction) bool) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, t := range s.txs {
		if keep(t) {
			total = total.Add(t.Amount)
		}
	}
	return total
}
