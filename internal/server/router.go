// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/stillwater/lodge/internal/identity"
	"github.com/stillwater/lodge/internal/media"
	appMiddleware "github.com/stillwater/lodge/internal/middleware"
	"github.com/stillwater/lodge/internal/upload"
)

// Deps are the handlers and policies the router is built from.
type Deps struct {
	Logger *slog.Logger
	Upload *upload.Handler
	Media  *media.Handler

	// APIKey guards the write endpoints; empty disables the check.
	APIKey string
	// Verifier, when set, additionally requires a bearer session on the
	// write endpoints and enables GET /session.
	Verifier identity.Verifier
}

// NewRouter returns the API router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(appMiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", appMiddleware.APIKeyHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at /swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	mount := func(r chi.Router) {
		r.Get("/gallery", d.Media.List)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAPIKey(d.APIKey))
			if d.Verifier != nil {
				r.Use(appMiddleware.RequireSession(d.Verifier))
			}
			r.Post("/upload/signed-url", d.Upload.SignedURL)
			r.Post("/gallery", d.Media.Register)
		})

		if d.Verifier != nil {
			r.With(appMiddleware.RequireSession(d.Verifier)).Get("/session", identity.CurrentSessionHandler)
		}
	}

	mount(r)
	r.Route("/api/v1", mount)

	return r
}
