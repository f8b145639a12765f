package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
)

const (
	shutdownTimeout     = 30 * time.Second
	feedCleanupInterval = time.Minute
)

func serveCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the ledger over HTTP: transactions, categories, statistics, the
session and live server-sent event streams. With AMQP configured, changes
made by other processes refresh the open streams.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{BackgroundCascade: true})
			if err != nil {
				return err
			}
			defer a.Close()
			logger := a.Logger.WithComponent(log.ComponentApp)

			if seed {
				if _, err := a.Categories.SeedDefaultsIfEmpty(cmd.Context()); err != nil {
					return err
				}
			}

			srv := apphttp.NewServer(":"+a.Config.Port, apphttp.Deps{
				Categories:   a.Categories,
				Transactions: a.Transactions,
				Aggregator:   a.Aggregator,
				Session:      a.Gate,
				Logger:       a.Logger,
			})
			// No WriteTimeout: event streams stay open.
			srv.ReadTimeout = 10 * time.Second
			srv.IdleTimeout = 60 * time.Second

			a.Aggregator.StartCleanup(feedCleanupInterval)

			ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Server shutdown error", log.FieldError, err)
				}
			})

			if a.Broker != nil {
				go func() {
					_ = a.Broker.RunConsumer(ctx, "changes", func(ctx context.Context) error {
						return a.Broker.ConsumeLedgerChanges(ctx, func(*amqp.LedgerChangedMessage) {
							a.Hub.Notify()
						})
					})
				}()
			}

			logger.Info("Starting HTTP server",
				"addr", srv.Addr,
				"backend", a.Config.DataBackend,
				"amqp", a.Broker != nil)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			<-done
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "insert the default categories when none exist")
	return cmd
}
