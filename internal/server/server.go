// Package server exposes the analytics engine and the property store over a
// REST API. Scoring endpoints under /api/v1/analysis are stateless; the
// property and analysis endpoints read and write through the store.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/analysis"
	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/store"
)

// Server routes API requests to the store and the scoring engines.
type Server struct {
	router chi.Router
	store  store.Store
	agg    *analysis.Aggregator
}

// New creates a Server with all routes and middleware configured.
// corsOrigins restricts cross-origin access; empty allows any origin.
func New(st store.Store, agg *analysis.Aggregator, corsOrigins []string) *Server {
	s := &Server{store: st, agg: agg}
	s.router = s.buildRouter(corsOrigins)
	return s
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) buildRouter(corsOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Post("/", s.handleCreateProperty)
			r.Get("/", s.handleListProperties)
			r.Get("/{id}", s.handleGetProperty)
			r.Put("/{id}", s.handleUpdateProperty)
			r.Delete("/{id}", s.handleDeleteProperty)
			r.Post("/{id}/analyze", s.handleAnalyzeProperty)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Post("/credit", s.handleCreditAnalysis)
			r.Post("/metrics", s.handleMetricsAnalysis)
			r.Post("/risk", s.handleRiskAnalysis)
			r.Post("/portfolio", s.handlePortfolioAnalysis)
		})

		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps engine and store errors onto HTTP status codes:
// invalid inputs are the caller's fault, missing records are 404, and
// anything else is a server error.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidation(err) || model.IsDivision(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
