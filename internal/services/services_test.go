package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/storage/memory"
)

type recordingPublisher struct {
	mu    sync.Mutex
	kinds []ledger.ChangeKind
	err   error
}

func (p *recordingPublisher) PublishLedgerChanged(_ context.Context, kind ledger.ChangeKind, _ int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
	return p.err
}

func (p *recordingPublisher) Kinds() []ledger.ChangeKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ledger.ChangeKind(nil), p.kinds...)
}

type fixture struct {
	hub          *ledger.Hub
	store        ledger.Store
	categories   *CategoryService
	transactions *TransactionService
	aggregator   *Aggregator
	publisher    *recordingPublisher
}

var fixedNow = time.Date(2025, time.August, 5, 14, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hub := ledger.NewHub()
	store := ledger.Observe(memory.New(), hub)
	pub := &recordingPublisher{}
	logger := log.Discard()

	f := &fixture{
		hub:          hub,
		store:        store,
		categories:   NewCategoryService(store, pub, logger),
		transactions: NewTransactionService(store, pub, logger),
		aggregator:   NewAggregator(store, hub, 50*time.Millisecond, logger),
		publisher:    pub,
	}
	f.transactions.now = func() time.Time { return fixedNow }
	f.aggregator.now = func() time.Time { return fixedNow }
	t.Cleanup(f.aggregator.Close)
	return f
}

func (f *fixture) category(t *testing.T, name string) core.Category {
	t.Helper()
	c, err := f.categories.Add(context.Background(), name, "category", core.PackARGB(0xFF000000))
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	return c
}

func (f *fixture) create(t *testing.T, cat core.Category, title string, typ core.TransactionType, amount, date string) core.Transaction {
	t.Helper()
	tx, err := f.transactions.Create(context.Background(), core.Entry{
		CategoryID: cat.ID, Title: title, Type: typ, Amount: amount, Date: date,
	})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return tx
}

func titles(txs []core.TransactionWithCategory) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.Transaction.Title
	}
	return out
}

func isValidation(err error, field string) bool {
	var ve *core.ValidationError
	return errors.As(err, &ve) && ve.Field == field
}
