// Package http serves the tracker as a JSON API under /api.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"subtrack/internal/analytics"
	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/middleware/ratelimit"
	"subtrack/internal/middleware/security"
	"subtrack/internal/middleware/trace"
	"subtrack/internal/ports"
	"subtrack/internal/services"
)

// Tracker is the application surface the handlers drive.
type Tracker interface {
	CreateSubscription(ctx context.Context, in core.SubscriptionInput) (core.Subscription, error)
	ListSubscriptions(ctx context.Context, f ports.SubscriptionFilter) ([]core.Subscription, error)
	GetSubscription(ctx context.Context, id string) (core.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, p core.SubscriptionPatch) (core.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	ListExpenses(ctx context.Context, f ports.ExpenseFilter) ([]core.Expense, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	CreateBudget(ctx context.Context, in core.BudgetInput) (core.Budget, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, id string, p core.BudgetPatch) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	Dashboard(ctx context.Context) (analytics.DashboardStats, error)
	Suggestions(ctx context.Context) ([]string, error)
	Export(ctx context.Context) (services.Export, error)
	Categories() services.Categories
	Ping(ctx context.Context) error
}

// SheetsExporter writes an export to a spreadsheet and reports the number
// of data rows written.
type SheetsExporter interface {
	WriteExport(ctx context.Context, e services.Export) (int, error)
}

type Config struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

type Server struct {
	http.Server
	tracker  Tracker
	sheets   SheetsExporter
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
}

type Option func(*Server)

// WithSheetsExporter enables POST /api/export/sheets.
func WithSheetsExporter(e SheetsExporter) Option {
	return func(s *Server) { s.sheets = e }
}

// NewServer wires the middleware chain and routes.
func NewServer(cfg Config, tracker Tracker, logger *applog.Logger, opts ...Option) *Server {
	logger = logger.OrDefault(applog.ComponentHTTP)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	detector := security.NewDetector(logger)
	s := &Server{
		tracker:  tracker,
		logger:   logger,
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP, logger),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(applog.RequestMiddleware(s.logger, trace.GetRequestID))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Get("/", s.handleRoot)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", s.handleCreateSubscription)
			r.Get("/", s.handleListSubscriptions)
			r.Get("/{id}", s.handleGetSubscription)
			r.Put("/{id}", s.handleUpdateSubscription)
			r.Delete("/{id}", s.handleDeleteSubscription)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", s.handleCreateExpense)
			r.Get("/", s.handleListExpenses)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Post("/", s.handleCreateBudget)
			r.Get("/", s.handleListBudgets)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/export", s.handleExport)
		r.Post("/export/sheets", s.handleSheetsExport)
		r.Get("/categories", s.handleCategories)
	})

	return r
}

// Shutdown stops background work and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context(), applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeDetail(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
