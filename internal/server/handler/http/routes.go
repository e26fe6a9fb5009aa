package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/formresume/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the form
// proxy API.
//
// Routes:
//
//	GET  /api/form-status     → formHandler.Status
//	POST /api/form-step       → formHandler.SubmitStep (rate limited)
//	GET  /api/states          → refHandler.States
//	GET  /api/cities          → refHandler.Cities
//	POST /api/contacts        → contactHandler.Create (rate limited)
//	PUT  /api/contacts/{id}   → contactHandler.Update (rate limited)
//	GET  /metrics             → Prometheus exposition
func NewRouter(
	formHandler *FormHandler,
	refHandler *RefDataHandler,
	contactHandler *ContactHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	// Bodies, when present, must be JSON
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/form-status", formHandler.Status)
		r.Get("/states", refHandler.States)
		r.Get("/cities", refHandler.Cities)

		// Public writes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(30, time.Minute))
			r.Post("/form-step", formHandler.SubmitStep)
			r.Post("/contacts", contactHandler.Create)
			r.Put("/contacts/{id}", contactHandler.Update)
		})
	})

	return r
}
