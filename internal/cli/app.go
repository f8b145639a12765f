package cli

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/config"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/worker"
)

// App holds everything a binary needs, opened from the environment.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Backend *backend.Result
	Hub     *ledger.Hub
	Store   ledger.Store // notifies Hub after writes
	Broker  *amqp.Client // nil when AMQP_URL is unset

	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Aggregator   *services.Aggregator
	Gate         *session.Gate
}

type AppOptions struct {
	// BackgroundCascade selects a fire-and-forget logout cascade. One-shot
	// commands wait for the wipe before exiting.
	BackgroundCascade bool
}

// OpenApp loads .env and the configuration, sets up logging and opens the
// backend, the optional broker and the services.
func OpenApp(ctx context.Context, opts AppOptions) (*App, error) {
	LoadEnvFile()

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg)

	res, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: res,
		Hub:     ledger.NewHub(),
	}
	a.Store = ledger.Observe(res.Store, a.Hub)

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPWipeQueue)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("connect to broker: %w", err)
		}
		a.Broker = client
		logger.Info("AMQP enabled", "exchange", cfg.AMQPExchange, "wipe_queue", cfg.AMQPWipeQueue)
	}

	a.Categories = services.NewCategoryService(a.Store, a.Publisher(), logger)
	a.Transactions = services.NewTransactionService(a.Store, a.Publisher(), logger)
	a.Aggregator = services.NewAggregator(a.Store, a.Hub, cfg.FeedKeepAlive, logger)
	a.Gate = session.NewGate(res.Preferences, a.cascade(opts), logger)
	return a, nil
}

// Publisher returns the broker as a change publisher, or nil without one.
func (a *App) Publisher() ledger.ChangePublisher {
	if a.Broker == nil {
		return nil
	}
	return a.Broker
}

func (a *App) cascade(opts AppOptions) session.Cascade {
	switch {
	case opts.BackgroundCascade && a.Broker != nil:
		return session.NewPublishedCascade(a.Broker, a.Logger)
	case opts.BackgroundCascade:
		return session.NewLocalCascade(a.Store, a.Logger)
	case a.Broker != nil:
		return inlineCascade{logger: a.Logger, run: func(ctx context.Context) error {
			return a.Broker.PublishWipeRequest(ctx, "logout")
		}}
	default:
		return inlineCascade{logger: a.Logger, run: func(ctx context.Context) error {
			return session.Wipe(ctx, a.Store)
		}}
	}
}

// OpenExporter returns the spreadsheet exporter, or nil when no spreadsheet
// is configured.
func OpenExporter(ctx context.Context, a *App) (worker.Exporter, error) {
	if !a.Config.ExportEnabled() {
		return nil, nil
	}
	e, err := gsheet.NewExporter(ctx, gsheet.Config{
		SpreadsheetID: a.Config.GoogleSpreadsheetID,
		SheetName:     a.Config.GoogleSheetName,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	a.Logger.Info("Google Sheets export enabled", "spreadsheet_id", a.Config.GoogleSpreadsheetID)
	return e, nil
}

// Close stops the aggregator and releases the broker and the backend.
func (a *App) Close() {
	a.Aggregator.Close()
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			a.Logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
	if err := a.Backend.Close(); err != nil {
		a.Logger.Warn("Failed to close backend", log.FieldError, err)
	}
}

// inlineCascade runs the cascade before Start returns.
type inlineCascade struct {
	logger *log.Logger
	run    func(context.Context) error
}

func (c inlineCascade) Start() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.run(ctx); err != nil {
		c.logger.Error("Logout cascade failed", log.FieldOperation, log.OpWipe, log.FieldError, err)
	}
}
