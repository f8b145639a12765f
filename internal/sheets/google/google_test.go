package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
)

func sampleTransactions() []core.TransactionWithCategory {
	food := core.Category{ID: 1, Name: "Food", Color: core.PackARGB(0xFFFF5722)}
	return []core.TransactionWithCategory{
		{
			Transaction: core.Transaction{ID: 2, CategoryID: 1, Title: "pizza", Type: core.Expense, Time: "08:15 PM",
				Amount: decimal.RequireFromString("-12.5"), Date: "05 08 2025", Note: "friday"},
			Category: food,
		},
		{
			Transaction: core.Transaction{ID: 1, CategoryID: 1, Title: "refund", Type: core.Income, Time: "09:00 AM",
				Amount: decimal.NewFromInt(3), Date: "01 08 2025"},
			Category: food,
		},
	}
}

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows(sampleTransactions())
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][7] != "Note" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	first := rows[1]
	if first[0] != int64(2) || first[1] != "05 08 2025" || first[4] != "expense" || first[5] != "-12.50" || first[6] != "Food" {
		t.Errorf("unexpected row: %v", first)
	}
	if rows[2][5] != "3.00" {
		t.Errorf("income amount = %v", rows[2][5])
	}
}

func TestTransactionRowsEmpty(t *testing.T) {
	rows := TransactionRows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected only the header, got %d rows", len(rows))
	}
}

func TestStatisticsRows(t *testing.T) {
	stats := core.ComputeStatistics(sampleTransactions())
	rows := StatisticsRows("08/2025", stats)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][1] != "08/2025" {
		t.Errorf("period = %v", rows[0][1])
	}
	got := rows[2]
	if got[0] != "Food" || got[1] != "15.50" || got[2] != "-9.50" || got[3] != "100.00" || got[4] != "#FFFF5722" {
		t.Errorf("unexpected stats row: %v", got)
	}

	if p := StatisticsRows("", nil)[0][1]; p != "All time" {
		t.Errorf("default period = %v", p)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Transactions", "2025 Transactions"},
		{"2024 Transactions", "2024 Transactions"},
		{"  Statistics ", "2025 Statistics"},
		{"", ""},
		{"12345 Sheet", "2025 12345 Sheet"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2025); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestNewExporterRequiresSpreadsheet(t *testing.T) {
	if _, err := NewExporterWithService(nil, Config{}, 2025); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

type sheetsCall struct {
	method string
	path   string
	values [][]any
}

func TestExportTransactionsAgainstFakeAPI(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []sheetsCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := sheetsCall{method: r.Method, path: r.URL.Path}
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			var vr struct {
				Values [][]any `json:"values"`
			}
			_ = json.Unmarshal(body, &vr)
			call.values = vr.Values
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx, goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	exp, err := NewExporterWithService(svc, Config{SpreadsheetID: "sheet-1"}, 2025)
	if err != nil {
		t.Fatalf("NewExporterWithService: %v", err)
	}

	n, err := exp.ExportTransactions(ctx, sampleTransactions())
	if err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected clear + update, got %d calls", len(calls))
	}
	if calls[0].method != http.MethodPost || !strings.HasSuffix(calls[0].path, ":clear") {
		t.Errorf("first call = %s %s, want clear", calls[0].method, calls[0].path)
	}
	if !strings.Contains(calls[0].path, "2025 Transactions") {
		t.Errorf("clear path = %s", calls[0].path)
	}
	if calls[1].method != http.MethodPut || len(calls[1].values) != 3 {
		t.Errorf("update call = %s with %d rows", calls[1].method, len(calls[1].values))
	}
}
