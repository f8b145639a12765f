package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
)

// parseFilter reads window, type and category from the query string.
func parseFilter(r *http.Request) (core.Filter, error) {
	q := r.URL.Query()
	window, ok := core.ParseTimeWindow(q.Get("window"))
	if !ok {
		return core.Filter{}, fmt.Errorf("unknown window %q", q.Get("window"))
	}
	typ, ok := core.ParseTypeFilter(q.Get("type"))
	if !ok {
		return core.Filter{}, fmt.Errorf("unknown type %q", q.Get("type"))
	}
	return core.Filter{Window: window, Type: typ, Category: strings.TrimSpace(q.Get("category"))}, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Aggregator.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(sum))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.deps.Aggregator.FilteredTransactions(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(txs))
}

func (s *Server) handleMonthTransactions(w http.ResponseWriter, r *http.Request) {
	month, year := chi.URLParam(r, "month"), chi.URLParam(r, "year")
	txs, err := s.deps.Aggregator.MonthTransactions(r.Context(), month, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	twc, found, err := s.deps.Transactions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(twc))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := s.deps.Transactions.Create(r.Context(), entry)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.respondTransaction(w, r, http.StatusCreated, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := s.deps.Transactions.Update(r.Context(), id, entry)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.respondTransaction(w, r, http.StatusOK, t)
}

// respondTransaction answers with the joined row when the category still
// exists, and with the bare row otherwise.
func (s *Server) respondTransaction(w http.ResponseWriter, r *http.Request, status int, t core.Transaction) {
	if twc, ok, err := s.deps.Transactions.Get(r.Context(), t.ID); err == nil && ok {
		writeJSON(w, status, toTransactionJSON(twc))
		return
	}
	writeJSON(w, status, toTransactionJSON(core.TransactionWithCategory{Transaction: t}))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.deps.Transactions.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tf, ok := core.ParseTypeFilter(q.Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", q.Get("type")))
		return
	}
	stats, err := s.deps.Aggregator.StatisticsFor(r.Context(), q.Get("month"), q.Get("year"), tf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsJSON(stats))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := core.ValidateCategoryName(req.Name); err != nil {
		writeServiceError(w, r, err)
		return
	}
	color := core.PackARGB(0xFF795548)
	if req.Color != "" {
		c, err := core.ParseColor(req.Color)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error(), Field: "color"})
			return
		}
		color = c
	}
	icon := req.Icon
	if icon == "" {
		icon = core.FallbackIcon
	}
	c, err := s.deps.Categories.Add(r.Context(), strings.TrimSpace(req.Name), icon, color)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryJSON(c))
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Categories.SeedDefaultsIfEmpty(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": n})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, found, err := s.deps.Categories.ByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err := s.deps.Categories.Delete(r.Context(), c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loggedIn, err := s.deps.Session.IsLoggedIn(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := sessionJSON{LoggedIn: loggedIn}
	if loggedIn {
		if out.Email, err = s.deps.Session.UserEmail(ctx); err == nil {
			out.Name, err = s.deps.Session.UserName(ctx)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "email is required", Field: "email"})
		return
	}
	if err := s.deps.Session.Login(r.Context(), strings.TrimSpace(req.Email), req.Name); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.handleWhoAmI(w, r)
}

// handleLogout answers once the session is cleared; the ledger wipe
// finishes in the background.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Session.Logout(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sessionJSON{LoggedIn: false})
}
