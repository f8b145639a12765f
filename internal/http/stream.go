package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/live"
	"expensetracker/internal/log"
)

const streamHeartbeat = 25 * time.Second

// handleStream serves a live feed as server-sent events. Each ledger change
// produces one "update" event carrying the whole recomputed value; store
// failures arrive as "error" events and the stream stays open.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	agg := s.deps.Aggregator
	switch name := chi.URLParam(r, "feed"); name {
	case "balance":
		streamFeed(w, r, agg.TotalBalance(), renderAmount)
	case "income":
		streamFeed(w, r, agg.TotalIncome(), renderAmount)
	case "expense":
		streamFeed(w, r, agg.TotalExpense(), renderAmount)
	case "today":
		today := r.URL.Query().Get("date")
		if today == "" {
			today = core.FormatDate(time.Now())
		}
		streamFeed(w, r, agg.TodayExpense(today), renderAmount)
	case "transactions":
		q := r.URL.Query()
		if q.Has("month") || q.Has("year") {
			streamFeed(w, r, agg.ByMonthYear(q.Get("month"), q.Get("year")), toTransactionsJSON)
			return
		}
		f, err := parseFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if f == (core.Filter{}) {
			streamFeed(w, r, agg.AllTransactions(), toTransactionsJSON)
			return
		}
		streamFeed(w, r, agg.Filtered(f), toTransactionsJSON)
	case "statistics":
		q := r.URL.Query()
		tf, ok := core.ParseTypeFilter(q.Get("type"))
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", q.Get("type")))
			return
		}
		streamFeed(w, r, agg.Statistics(q.Get("month"), q.Get("year"), tf), toStatisticsJSON)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown feed %q", name))
	}
}

func renderAmount(d decimal.Decimal) map[string]string {
	return map[string]string{"amount": d.StringFixed(2)}
}

func streamFeed[T, J any](w http.ResponseWriter, r *http.Request, feed *live.Feed[T], render func(T) J) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates := feed.Subscribe(ctx)
	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	logger.DebugContext(ctx, "Stream opened", log.FieldFeed, feed.Name())
	defer logger.DebugContext(ctx, "Stream closed", log.FieldFeed, feed.Name())

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case u, ok := <-updates:
			if !ok {
				return
			}
			var err error
			if u.Err != nil {
				err = writeEvent(w, "error", errorJSON{Error: u.Err.Error()})
			} else {
				err = writeEvent(w, "update", render(u.Value))
			}
			if err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
