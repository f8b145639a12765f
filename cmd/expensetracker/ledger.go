package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
	"expensetracker/internal/core"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories when none exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Categories.SeedDefaultsIfEmpty(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Categories already present, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories\n", n)
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, income, expense and today's spending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.Aggregator.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Balance\t%s\n", sum.Balance.StringFixed(2))
			fmt.Fprintf(w, "Income\t%s\n", sum.Income.StringFixed(2))
			fmt.Fprintf(w, "Expense\t%s\n", sum.Expense.StringFixed(2))
			fmt.Fprintf(w, "Today (%s)\t%s\n", sum.Today, sum.TodayExpense.StringFixed(2))
			return w.Flush()
		},
	}
}

func listCmd() *cobra.Command {
	var window, typ, category, month, year string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Long: `List joined transactions. Either narrow by --month and --year (textual match
on the date) or by --window, --type and --category.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			var txs []core.TransactionWithCategory
			if month != "" || year != "" {
				txs, err = a.Aggregator.MonthTransactions(cmd.Context(), month, year)
			} else {
				f, ferr := buildFilter(window, typ, category)
				if ferr != nil {
					return ferr
				}
				txs, err = a.Aggregator.FilteredTransactions(cmd.Context(), f)
			}
			if err != nil {
				return err
			}
			return printTransactions(cmd.OutOrStdout(), txs)
		},
	}

	cmd.Flags().StringVar(&window, "window", "All", "time window (All, Today, 7 days, 30 days, 90 days, This Year)")
	cmd.Flags().StringVar(&typ, "type", "All", "transaction type (All, Income, Expense)")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&month, "month", "", "two-digit month, e.g. 03")
	cmd.Flags().StringVar(&year, "year", "", "four-digit year")
	return cmd
}

func addCmd() *cobra.Command {
	var (
		typ      string
		category string
		date     string
		at       string
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add <title> <amount>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tt, err := core.ParseTransactionType(typ)
			if err != nil {
				return err
			}

			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			c, ok, err := a.Categories.FindByName(cmd.Context(), category)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unknown category %q, see 'expensetracker categories list'", category)
			}

			t, err := a.Transactions.Create(cmd.Context(), core.Entry{
				CategoryID: c.ID,
				Title:      args[0],
				Type:       tt,
				Amount:     args[1],
				Date:       date,
				Time:       at,
				Note:       note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added transaction %d: %s %s\n", t.ID, t.Title, t.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&date, "date", "", `date as "dd MM yyyy" (default today)`)
	cmd.Flags().StringVar(&at, "time", "", `time as "hh:mm AM" (default now)`)
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction ID: %w", err)
			}

			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Transactions.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var typ, month, year string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the per-category breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, ok := core.ParseTypeFilter(typ)
			if !ok {
				return fmt.Errorf("unknown type %q", typ)
			}

			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Aggregator.StatisticsFor(cmd.Context(), month, year, tf)
			if err != nil {
				return err
			}
			return printStatistics(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "All", "transaction type (All, Income, Expense)")
	cmd.Flags().StringVar(&month, "month", "", "two-digit month; empty with --year empty means all time")
	cmd.Flags().StringVar(&year, "year", "", "four-digit year")
	return cmd
}

func buildFilter(window, typ, category string) (core.Filter, error) {
	w, ok := core.ParseTimeWindow(window)
	if !ok {
		return core.Filter{}, fmt.Errorf("unknown window %q", window)
	}
	tf, ok := core.ParseTypeFilter(typ)
	if !ok {
		return core.Filter{}, fmt.Errorf("unknown type %q", typ)
	}
	return core.Filter{Window: w, Type: tf, Category: strings.TrimSpace(category)}, nil
}

func printTransactions(out io.Writer, txs []core.TransactionWithCategory) error {
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDate\tTime\tTitle\tCategory\tAmount\tNote")
	for _, t := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Transaction.ID,
			t.Transaction.Date,
			t.Transaction.Time,
			t.Transaction.Title,
			t.Category.Name,
			t.Transaction.Amount.StringFixed(2),
			t.Transaction.Note)
	}
	return w.Flush()
}

func printStatistics(out io.Writer, stats []core.ExpenseStatistic) error {
	if len(stats) == 0 {
		fmt.Fprintln(out, "No statistics for this period.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Category\tAmount\tShare")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%.2f%%\n", s.Category, s.Amount.StringFixed(2), s.Percentage)
	}
	return w.Flush()
}
