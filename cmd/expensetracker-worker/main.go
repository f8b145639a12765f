package main

import (
	"context"
	"errors"
	"os"
	"time"

	"expensetracker/internal/cli"
	"expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)

	a, err := cli.OpenApp(context.Background(), cli.AppOptions{BackgroundCascade: true})
	if err != nil {
		logger.Error("Failed to start worker", log.FieldError, err)
		os.Exit(1)
	}
	defer a.Close()
	logger = a.Logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting expensetracker-worker")

	// Google Sheets export is optional
	exporter, err := cli.OpenExporter(context.Background(), a)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
		os.Exit(1)
	}
	if exporter == nil {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}
	if a.Broker == nil && exporter == nil {
		logger.Error("Nothing to do: set AMQP_URL or GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	// Wipes are announced on the broker so API processes refresh their feeds.
	w := worker.NewLedgerWorker(a.Store, a.Hub, a.Publisher(), exporter, a.Logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if a.Broker != nil {
		err = w.Run(ctx, a.Broker, a.Config.ExportInterval)
	} else {
		logger.Info("AMQP disabled, running export only")
		err = w.RunPeriodicExport(ctx, a.Config.ExportInterval)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		a.Close()
		os.Exit(1)
	}

	<-done
	logger.Info("Worker shutdown complete")
}
