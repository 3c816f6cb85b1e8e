package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNoRoute(r))
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(noStoreMiddleware)
		r.Get("/datasets", s.handleDatasets)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/current", s.handleCurrentSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionView)
			r.Delete("/", s.handleCloseSession)
			r.Get("/load", s.handleLoadStatus)
			r.Post("/reload", s.handleReload)
			r.Post("/flip", s.handleFlip)
			r.Post("/advance", s.handleAdvance)
			r.Post("/grade", s.handleGrade)
			r.Post("/filter", s.handleFilter)
			r.Post("/keys/{key}", s.handleKey)
			r.Get("/stats", s.handleStats)
			r.Get("/cards", s.handleCards)
		})
	})

	return r
}
