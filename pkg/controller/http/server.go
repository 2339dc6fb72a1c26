package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/avsafe/pkg/service/metrics"
	"github.com/secmon-lab/avsafe/pkg/usecase"
)

// maxBodyBytes bounds submitted report bodies
const maxBodyBytes = 1 << 20

type Server struct {
	router  *chi.Mux
	uc      *usecase.UseCases
	metrics *metrics.Metrics
	now     func() time.Time
}

type Options func(*Server)

// WithMetrics exposes the registry on /metrics
func WithMetrics(m *metrics.Metrics) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Options {
	return func(s *Server) {
		s.now = now
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/risk", func(r chi.Router) {
			r.Get("/matrix", riskMatrixHandler)
			r.Get("/classify", classifyHandler)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/", s.submitReport)
			r.Get("/", s.listReports)
			r.Get("/{number}", s.getReport)
			r.Patch("/{number}/status", s.updateStatus)
			r.Get("/{number}/sla", s.reportSLA)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", s.dashboardSummary)
			r.Get("/recent", s.dashboardRecent)
			r.Get("/sla", s.dashboardSLA)
		})

		r.Get("/export", s.export)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
