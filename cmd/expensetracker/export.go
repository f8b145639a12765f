package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
	"expensetracker/internal/worker"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to Google Sheets once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			exporter, err := cli.OpenExporter(cmd.Context(), a)
			if err != nil {
				return err
			}
			if exporter == nil {
				return errors.New("GOOGLE_SPREADSHEET_ID is not set")
			}
			if err := worker.NewLedgerWorker(a.Store, nil, nil, exporter, a.Logger).Export(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Export finished")
			return nil
		},
	}
}
