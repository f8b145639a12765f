package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

// Deps are the services the API is served from.
type Deps struct {
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Aggregator   *services.Aggregator
	Session      *session.Gate
	Logger       *log.Logger
}

type Server struct {
	http.Server
	deps    Deps
	logger  *log.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	// streams end when baseCancel runs so Shutdown does not wait on them
	baseCtx      context.Context
	baseCancel   context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	ips := security.NewClientIPResolver()
	baseCtx, baseCancel := context.WithCancel(context.Background())

	s := &Server{
		deps:       deps,
		logger:     logger,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:     trace.NewMiddleware(logger, ips.ClientIP),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(ips.ClientIP, ratelimit.WritesOnly, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		r.Get("/months/{year}/{month}/transactions", s.handleMonthTransactions)

		r.Get("/statistics", s.handleStatistics)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleAddCategory)
		r.Post("/categories/seed", s.handleSeedCategories)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Get("/session", s.handleWhoAmI)
		r.Post("/session/login", s.handleLogin)
		r.Post("/session/logout", s.handleLogout)

		r.Get("/stream/{feed}", s.handleStream)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	return s
}

// Shutdown ends open streams, stops the limiter and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.baseCancel()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
