package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// ReportReader is the read side the handlers need.
type ReportReader interface {
	Dashboard(ctx context.Context, recent int) (core.DashboardSummary, error)
	MonthlyReport(ctx context.Context, year, month int) (core.MonthlyReport, error)
	YearlyReport(ctx context.Context, year int) (core.YearlyReport, error)
	Transactions(ctx context.Context, f services.TransactionFilter) ([]core.Transaction, error)
	Goals(ctx context.Context) ([]core.GoalView, error)
	OverdueGoals(ctx context.Context) ([]core.GoalView, error)
	Categories(ctx context.Context) (services.CategoryLists, error)
	CategoriesByType(ctx context.Context, typ core.TransactionType) ([]core.Category, error)
	Years() []int
}

// Writer is the write side the handlers need.
type Writer interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	CancelGoal(ctx context.Context, id int64) (core.Goal, error)
	Ping(ctx context.Context) error
}

// Options configures NewServer.
type Options struct {
	Addr               string
	Reports            ReportReader
	Writer             Writer
	Logger             *applog.Logger
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	reports     ReportReader
	writer      Writer
	logger      *applog.Logger
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		reports:     opts.Reports,
		writer:      opts.Writer,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	detector := security.NewDetector()
	tracer := trace.NewMiddleware(logger, detector.ClientIP)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracer.Handler)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(detector.Middleware(logger))
	r.Use(s.rateLimiter.Middleware(detector.ClientIP, s.handleRateLimited))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/years", s.handleReportYears)
			r.Get("/{year}", s.handleYearlyReport)
			r.Get("/{year}/{month}", s.handleMonthlyReport)
		})

		r.Get("/goals", s.handleListGoals)
		r.Get("/goals/overdue", s.handleOverdueGoals)
		r.Post("/goals", s.handleCreateGoal)
		r.Delete("/goals/{id}", s.handleCancelGoal)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such route", Code: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "method_not_allowed"})
	})

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error: "rate limit exceeded, try again later",
		Code:  "rate_limited",
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the data backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.writer.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
