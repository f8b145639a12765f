package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
)

// Config selects the spreadsheet and sheet names to export into.
type Config struct {
	SpreadsheetID   string
	SheetName       string // base name, year is prefixed
	StatisticsSheet string // base name, year is prefixed
}

// Exporter writes ledger snapshots into a Google spreadsheet. Every export
// replaces the sheet contents.
type Exporter struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	statisticsSheet   string
}

// NewExporter authenticates with a service account taken from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewExporterWithService(svc, cfg, time.Now().Year())
}

// NewExporterWithService uses an existing service; year prefixes the sheet
// names.
func NewExporterWithService(svc *gsheet.Service, cfg Config, year int) (*Exporter, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	txSheet := strings.TrimSpace(cfg.SheetName)
	if txSheet == "" {
		txSheet = "Transactions"
	}
	statsSheet := strings.TrimSpace(cfg.StatisticsSheet)
	if statsSheet == "" {
		statsSheet = "Statistics"
	}
	return &Exporter{
		svc:               svc,
		spreadsheetID:     id,
		transactionsSheet: yearPrefixedName(txSheet, year),
		statisticsSheet:   yearPrefixedName(statsSheet, year),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportTransactions replaces the transactions sheet with a header and one
// row per joined transaction. It returns the number of data rows written.
func (e *Exporter) ExportTransactions(ctx context.Context, txs []core.TransactionWithCategory) (int, error) {
	rows := TransactionRows(txs)
	if err := e.replace(ctx, e.transactionsSheet, "A:H", rows); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Exported transactions", "sheet", e.transactionsSheet, "rows", len(txs))
	return len(txs), nil
}

// ExportStatistics replaces the statistics sheet with the breakdown.
func (e *Exporter) ExportStatistics(ctx context.Context, period string, stats []core.ExpenseStatistic) (int, error) {
	rows := StatisticsRows(period, stats)
	if err := e.replace(ctx, e.statisticsSheet, "A:E", rows); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Exported statistics", "sheet", e.statisticsSheet, "period", period, "rows", len(stats))
	return len(stats), nil
}

func (e *Exporter) replace(ctx context.Context, sheet, cols string, rows [][]any) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	clearRange := fmt.Sprintf("%s!%s", sheet, cols)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}
	if len(rows) == 0 {
		return nil
	}
	writeRange := fmt.Sprintf("%s!A1", sheet)
	_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}
	return nil
}

var transactionHeader = []any{"ID", "Date", "Time", "Title", "Type", "Amount", "Category", "Note"}

// TransactionRows renders a header plus one row per transaction. Amounts
// keep their sign and two decimals.
func TransactionRows(txs []core.TransactionWithCategory) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, transactionHeader)
	for _, t := range txs {
		tx := t.Transaction
		rows = append(rows, []any{
			tx.ID,
			tx.Date,
			tx.Time,
			tx.Title,
			tx.Type.String(),
			tx.Amount.StringFixed(2),
			t.Category.Name,
			tx.Note,
		})
	}
	return rows
}

// StatisticsRows renders a period line, a header and one row per category.
func StatisticsRows(period string, stats []core.ExpenseStatistic) [][]any {
	if period == "" {
		period = "All time"
	}
	rows := make([][]any, 0, len(stats)+2)
	rows = append(rows, []any{"Period", period})
	rows = append(rows, []any{"Category", "Amount", "Net", "Percentage", "Color"})
	for _, s := range stats {
		rows = append(rows, []any{
			s.Category,
			s.Amount.StringFixed(2),
			s.Net.StringFixed(2),
			strconv.FormatFloat(s.Percentage, 'f', 2, 64),
			s.Color.Hex(),
		})
	}
	return rows
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
