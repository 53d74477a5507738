// Package http exposes the ledger, budget, category and report services as a
// JSON API authenticated with bearer session tokens.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/identity"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Pinger reports whether a dependency is reachable; used by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API serves.
type Deps struct {
	Identity   *identity.Provider
	Reports    *services.ReportService
	Budgets    *services.BudgetService
	Expenses   *services.LedgerService
	Income     *services.LedgerService
	Categories *services.CategoryService

	// Limiter throttles mutating requests; nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// Ready is checked by /readyz when set.
	Ready Pinger
	// Now overrides the clock that picks the current window; used by tests.
	Now    func() time.Time
	Logger *log.Logger
}

type Server struct {
	http.Server

	deps    Deps
	logger  *log.Logger
	tracer  *trace.Middleware
	now     func() time.Time
	started time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		deps:    deps,
		logger:  logger,
		tracer:  trace.NewMiddleware(logger, extractClientIP),
		now:     now,
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /auth/signout", s.handleSignOut)
	mux.HandleFunc("GET /auth/profile", s.authed(s.handleGetProfile))
	mux.HandleFunc("PATCH /auth/profile", s.authed(s.handleUpdateProfile))
	mux.HandleFunc("DELETE /auth/profile", s.authed(s.handleDeleteAccount))

	mux.HandleFunc("GET /reports/monthly", s.authed(s.handleMonthlyReport))

	mux.HandleFunc("GET /budgets/current", s.authed(s.handleCurrentBudget))
	mux.HandleFunc("PUT /budgets/current", s.authed(s.handleSetBudgetCap))
	mux.HandleFunc("POST /budgets", s.authed(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets/{id}", s.authed(s.handleGetBudget))
	mux.HandleFunc("PATCH /budgets/{id}", s.authed(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /budgets/{id}", s.authed(s.handleDeleteBudget))

	for _, l := range []*services.LedgerService{deps.Expenses, deps.Income} {
		if l == nil {
			continue
		}
		base := ledgerPath(l.Kind())
		h := ledgerHandlers{s: s, svc: l}
		mux.HandleFunc("GET "+base, s.authed(h.list))
		mux.HandleFunc("POST "+base, s.authed(h.create))
		mux.HandleFunc("GET "+base+"/{id}", s.authed(h.get))
		mux.HandleFunc("PATCH "+base+"/{id}", s.authed(h.update))
		mux.HandleFunc("DELETE "+base+"/{id}", s.authed(h.delete))
	}

	mux.HandleFunc("GET /categories", s.authed(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.authed(s.handleCreateCategory))
	mux.HandleFunc("GET /categories/{id}", s.authed(s.handleGetCategory))
	mux.HandleFunc("PATCH /categories/{id}", s.authed(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.authed(s.handleDeleteCategory))

	var handler http.Handler = mux
	if deps.Limiter != nil {
		handler = deps.Limiter.Middleware(extractClientIP, s.onRateLimited,
			http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)(handler)
	}
	handler = withSecurityHeaders(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
