package services

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

// TransactionService is the write path: every entry passes
// core.ValidateEntry before it reaches the store.
type TransactionService struct {
	store     ledger.TransactionStore
	publisher ledger.ChangePublisher
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
}

// NewTransactionService wires the write path. publisher may be nil.
func NewTransactionService(store ledger.TransactionStore, publisher ledger.ChangePublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// Create validates e, applies the sign of its type and stores it.
func (s *TransactionService) Create(ctx context.Context, e core.Entry) (core.Transaction, error) {
	t, err := core.BuildTransaction(e, s.now())
	if err != nil {
		return core.Transaction{}, err
	}

	stored, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.events.LogTransactionCreated(ctx, stored.ID, stored.Title, stored.Amount.StringFixed(2), stored.Date, stored.CategoryID)
	s.publish(ctx, ledger.TransactionCreated, stored.ID)
	return stored, nil
}

// Update replaces transaction id with e. Empty date or time tokens keep the
// stored values, also for a row whose category was deleted.
func (s *TransactionService) Update(ctx context.Context, id int64, e core.Entry) (core.Transaction, error) {
	if e.Date == "" || e.Time == "" {
		current, ok, err := s.store.TransactionRow(ctx, id)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
		if !ok {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", core.ErrNotFound)
		}
		if e.Date == "" {
			e.Date = current.Date
		}
		if e.Time == "" {
			e.Time = current.Time
		}
	}

	t, err := core.BuildTransaction(e, s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, id)
	s.publish(ctx, ledger.TransactionUpdated, id)
	return t, nil
}

// Delete removes the row. Deleting a missing id is not an error.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	s.publish(ctx, ledger.TransactionDeleted, id)
	return nil
}

// Get returns the joined transaction. ok is false when the row is missing
// or its category was deleted.
func (s *TransactionService) Get(ctx context.Context, id int64) (core.TransactionWithCategory, bool, error) {
	twc, ok, err := s.store.TransactionByID(ctx, id)
	if err != nil {
		return core.TransactionWithCategory{}, false, fmt.Errorf("get transaction: %w", err)
	}
	return twc, ok, nil
}

func (s *TransactionService) publish(ctx context.Context, kind ledger.ChangeKind, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, kind, id); err != nil {
		// The row is stored; remote views catch up on the next change.
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			"kind", kind, log.FieldTransactionID, id, log.FieldError, err)
	}
}
