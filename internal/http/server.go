package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"guidetrack/internal/log"
	"guidetrack/internal/services"
)

// Options tunes the API server. Zero values pick defaults.
type Options struct {
	AllowedOrigins    []string
	RequestsPerMinute int
	RequestTimeout    time.Duration
}

type Server struct {
	http.Server
	svc         *services.GuideService
	logger      *log.Logger
	rateLimiter *rateLimiter
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer wires the JSON API on a chi router and returns a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.GuideService, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	s := &Server{
		svc:         svc,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.RequestsPerMinute),
		started:     time.Now(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(newCORS(opts.AllowedOrigins))
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.limitWrites)

		r.Route("/tours", func(r chi.Router) {
			r.Get("/", s.handleListTours)
			r.Post("/", s.handleCreateTour)
			r.Get("/conflicts", s.handleCheckConflicts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTour)
				r.Put("/", s.handleUpdateTour)
				r.Delete("/", s.handleDeleteTour)
				r.Get("/metrics", s.handleTourMetrics)
				r.Post("/tips", s.handleAddTip)
				r.Post("/commissions", s.handleAddCommission)
				r.Put("/payment", s.handleUpdatePayment)
			})
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/by-category", s.handleExpensesByCategory)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Get("/categories/expense", s.handleExpenseCategories)
		r.Post("/categories/expense", s.handleAddExpenseCategory)
		r.Get("/categories/commission", s.handleCommissionCategories)

		r.Route("/agencies", func(r chi.Router) {
			r.Get("/", s.handleListAgencies)
			r.Post("/", s.handleCreateAgency)
			r.Get("/{id}", s.handleGetAgency)
			r.Put("/{id}", s.handleUpdateAgency)
			r.Delete("/{id}", s.handleDeleteAgency)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handleUpdateSettings)

		r.Get("/user", s.handleGetUser)
		r.Put("/user", s.handleSaveUser)
		r.Delete("/user", s.handleDeleteUser)

		r.Get("/summary", s.handleSummary)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/reports/monthly", s.handleMonthlyReports)
		r.Get("/reports/agencies", s.handleAgencyReports)
		r.Get("/calendar/{year}/{month}", s.handleCalendar)
		r.Get("/calendar/day/{date}", s.handleToursOn)

		r.Get("/export/tours.csv", s.handleExportTours)
		r.Get("/export/expenses.csv", s.handleExportExpenses)
		r.Get("/export/all.csv", s.handleExportAll)

		r.Get("/backup", s.handleExportBackup)
		r.Post("/backup", s.handleImportBackup)
		r.Delete("/data", s.handleClearAll)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready once state has been loaded.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.svc == nil || s.svc.State().Loading {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
