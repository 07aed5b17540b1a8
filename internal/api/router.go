package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/parameters", func(r chi.Router) {
			r.Get("/", s.handleListParameters)
			r.Get("/*", s.handleGetParameter)
			r.Put("/*", s.handleSetParameter)
		})

		if s.auditRepo != nil {
			r.Get("/audit", s.handleListAudit)
		}

		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

// wsPath returns the configured WebSocket path under /api/v1.
func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// handleHealth reports overall health and the state of each dependency.
// It answers 503 when any dependency is unhealthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := map[string]string{"endpoint": "ok"}

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			checks["database"] = err.Error()
			status = "degraded"
		} else {
			checks["database"] = "ok"
		}
	}
	if s.bridge != nil {
		if s.bridge.GetMetrics().Connected {
			checks["mqtt"] = "ok"
		} else {
			checks["mqtt"] = "disconnected"
			status = "degraded"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
