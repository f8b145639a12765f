package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const maxBodyBytes = 64 << 10

type (
	transactionJSON struct {
		ID         int64  `json:"id"`
		CategoryID int64  `json:"category_id"`
		Category   string `json:"category"`
		Icon       string `json:"icon"`
		Color      string `json:"color"`
		Title      string `json:"title"`
		Type       string `json:"type"`
		Amount     string `json:"amount"`
		Date       string `json:"date"`
		Time       string `json:"time"`
		Note       string `json:"note,omitempty"`
	}

	categoryJSON struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Icon     string `json:"icon"`
		Color    string `json:"color"`
		IsCustom bool   `json:"is_custom"`
	}

	statisticJSON struct {
		CategoryID int64   `json:"category_id"`
		Category   string  `json:"category"`
		Amount     string  `json:"amount"`
		Net        string  `json:"net"`
		Percentage float64 `json:"percentage"`
		Icon       string  `json:"icon"`
		Color      string  `json:"color"`
	}

	summaryJSON struct {
		Balance      string `json:"balance"`
		Income       string `json:"income"`
		Expense      string `json:"expense"`
		TodayExpense string `json:"today_expense"`
		Today        string `json:"today"`
	}

	entryRequest struct {
		CategoryID int64  `json:"category_id"`
		Title      string `json:"title"`
		Type       string `json:"type"`
		Amount     string `json:"amount"`
		Date       string `json:"date"`
		Time       string `json:"time"`
		Note       string `json:"note"`
	}

	categoryRequest struct {
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}

	loginRequest struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	sessionJSON struct {
		LoggedIn bool   `json:"logged_in"`
		Email    string `json:"email,omitempty"`
		Name     string `json:"name,omitempty"`
	}

	errorJSON struct {
		Error string `json:"error"`
		Field string `json:"field,omitempty"`
	}
)

func toTransactionJSON(t core.TransactionWithCategory) transactionJSON {
	return transactionJSON{
		ID:         t.Transaction.ID,
		CategoryID: t.Transaction.CategoryID,
		Category:   t.Category.Name,
		Icon:       core.ResolveIcon(t.Category.IconRef),
		Color:      t.Category.Color.Hex(),
		Title:      t.Transaction.Title,
		Type:       t.Transaction.Type.String(),
		Amount:     t.Transaction.Amount.StringFixed(2),
		Date:       t.Transaction.Date,
		Time:       t.Transaction.Time,
		Note:       t.Transaction.Note,
	}
}

func toTransactionsJSON(txs []core.TransactionWithCategory) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:       c.ID,
		Name:     c.Name,
		Icon:     core.ResolveIcon(c.IconRef),
		Color:    c.Color.Hex(),
		IsCustom: c.IsCustom,
	}
}

func toStatisticsJSON(stats []core.ExpenseStatistic) []statisticJSON {
	out := make([]statisticJSON, 0, len(stats))
	for _, s := range stats {
		out = append(out, statisticJSON{
			CategoryID: s.CategoryID,
			Category:   s.Category,
			Amount:     s.Amount.StringFixed(2),
			Net:        s.Net.StringFixed(2),
			Percentage: s.Percentage,
			Icon:       s.IconRef,
			Color:      s.Color.Hex(),
		})
	}
	return out
}

func toSummaryJSON(s core.Summary) summaryJSON {
	return summaryJSON{
		Balance:      s.Balance.StringFixed(2),
		Income:       s.Income.StringFixed(2),
		Expense:      s.Expense.StringFixed(2),
		TodayExpense: s.TodayExpense.StringFixed(2),
		Today:        s.Today,
	}
}

func (e entryRequest) toEntry() (core.Entry, error) {
	typ, err := core.ParseTransactionType(e.Type)
	if err != nil {
		return core.Entry{}, err
	}
	return core.Entry{
		CategoryID: e.CategoryID,
		Title:      e.Title,
		Type:       typ,
		Amount:     e.Amount,
		Date:       e.Date,
		Time:       e.Time,
		Note:       e.Note,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

// writeServiceError maps validation failures to 400, missing rows to 404
// and everything else to 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		ctx := r.Context()
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Request failed", err,
			log.ComponentHTTP, operationOf(r.Method),
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func operationOf(method string) string {
	switch method {
	case http.MethodPost:
		return log.OpCreate
	case http.MethodPut, http.MethodPatch:
		return log.OpUpdate
	case http.MethodDelete:
		return log.OpDelete
	default:
		return log.OpRead
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
