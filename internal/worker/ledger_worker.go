package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/session"
)

// Exporter receives ledger snapshots, e.g. a spreadsheet.
type Exporter interface {
	ExportTransactions(ctx context.Context, txs []core.TransactionWithCategory) (int, error)
	ExportStatistics(ctx context.Context, period string, stats []core.ExpenseStatistic) (int, error)
}

// Notifier is poked whenever the ledger changed behind this process's back.
type Notifier interface {
	Notify()
}

// Store is what the worker reads and wipes.
type Store interface {
	session.Wiper
	ListTransactions(ctx context.Context) ([]core.TransactionWithCategory, error)
}

// Broker is the consuming side of the AMQP client.
type Broker interface {
	ConsumeWipeRequests(ctx context.Context, handler func(context.Context, *amqp.WipeRequestMessage) error) error
	ConsumeLedgerChanges(ctx context.Context, handler func(*amqp.LedgerChangedMessage)) error
	RunConsumer(ctx context.Context, name string, consume func(context.Context) error) error
}

// LedgerWorker runs the logout cascade for wipe requests, forwards change
// notices from other processes to the local hub and keeps the spreadsheet
// export fresh.
type LedgerWorker struct {
	store     Store
	notifier  Notifier
	publisher ledger.ChangePublisher
	exporter  Exporter
	logger    *log.Logger
	dirty     atomic.Bool
}

// NewLedgerWorker wires the worker. notifier, publisher and exporter may be
// nil. publisher announces wipes to the processes serving live views.
func NewLedgerWorker(store Store, notifier Notifier, publisher ledger.ChangePublisher, exporter Exporter, logger *log.Logger) *LedgerWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	w := &LedgerWorker{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		exporter:  exporter,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
	w.dirty.Store(true)
	return w
}

// HandleWipeRequest empties the ledger and announces it, also after a
// partial wipe. A failure leaves the store partially cleared and is returned
// so the message is rejected.
func (w *LedgerWorker) HandleWipeRequest(ctx context.Context, msg *amqp.WipeRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing wipe request",
		log.FieldMessageID, msg.ID,
		log.FieldOperation, log.OpWipe,
		"reason", msg.Reason)

	err := session.Wipe(ctx, w.store)
	w.changed()
	w.announceWipe(ctx)
	if err != nil {
		return fmt.Errorf("wipe ledger: %w", err)
	}

	w.logger.InfoContext(ctx, "Ledger wiped", log.FieldMessageID, msg.ID)
	return nil
}

// HandleLedgerChanged marks the export stale and wakes local feeds.
func (w *LedgerWorker) HandleLedgerChanged(msg *amqp.LedgerChangedMessage) {
	w.logger.Debug("Ledger changed elsewhere",
		log.FieldMessageID, msg.ID,
		"kind", string(msg.Kind),
		"entity_id", msg.EntityID,
		"origin", msg.Origin)
	w.changed()
}

func (w *LedgerWorker) announceWipe(ctx context.Context) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.PublishLedgerChanged(ctx, ledger.LedgerWiped, 0); err != nil {
		w.logger.WarnContext(ctx, "Failed to publish ledger wipe",
			log.FieldOperation, log.OpPublish, log.FieldError, err)
	}
}

func (w *LedgerWorker) changed() {
	w.dirty.Store(true)
	if w.notifier != nil {
		w.notifier.Notify()
	}
}

// Export writes the joined transaction list and its all-time statistics.
func (w *LedgerWorker) Export(ctx context.Context) error {
	if w.exporter == nil {
		return nil
	}
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	n, err := w.exporter.ExportTransactions(ctx, txs)
	if err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	stats := core.ComputeStatistics(txs)
	if _, err := w.exporter.ExportStatistics(ctx, "", stats); err != nil {
		return fmt.Errorf("export statistics: %w", err)
	}
	w.logger.InfoContext(ctx, "Export finished",
		log.FieldOperation, log.OpExport,
		"transactions", n,
		"categories", len(stats))
	return nil
}

// ExportIfChanged exports only when a change was seen since the last
// successful export. The first call always exports.
func (w *LedgerWorker) ExportIfChanged(ctx context.Context) error {
	if !w.dirty.Swap(false) {
		return nil
	}
	if err := w.Export(ctx); err != nil {
		w.dirty.Store(true)
		return err
	}
	return nil
}

// RunPeriodicExport calls ExportIfChanged every interval until ctx is done.
func (w *LedgerWorker) RunPeriodicExport(ctx context.Context, interval time.Duration) error {
	if w.exporter == nil || interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.ExportIfChanged(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Periodic export failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Run consumes both queues and runs the periodic export until ctx is done.
func (w *LedgerWorker) Run(ctx context.Context, broker Broker, exportInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return broker.RunConsumer(ctx, "wipe", func(ctx context.Context) error {
			return broker.ConsumeWipeRequests(ctx, w.HandleWipeRequest)
		})
	})
	g.Go(func() error {
		return broker.RunConsumer(ctx, "changes", func(ctx context.Context) error {
			return broker.ConsumeLedgerChanges(ctx, w.HandleLedgerChanged)
		})
	})
	g.Go(func() error {
		return w.RunPeriodicExport(ctx, exportInterval)
	})

	w.logger.InfoContext(ctx, "Ledger worker started", "export_interval", exportInterval)
	return g.Wait()
}
