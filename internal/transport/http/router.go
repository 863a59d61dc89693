// Package httptransport assembles the chi router: shared middleware, the
// public read endpoints and the authenticated group.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"hackhub/internal/platform/middleware"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/platform/middleware/metadata"
	"hackhub/pkg/platform/middleware/requesttime"
)

// PublicRoutes mounts endpoints readable without a token.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// Routes mounts endpoints that require an authenticated actor.
type Routes interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps is everything NewRouter mounts.
type Deps struct {
	Logger *slog.Logger

	// RequireAuth resolves the bearer token into an actor.
	RequireAuth func(http.Handler) http.Handler
	// RateLimit guards the authenticated group. Nil disables it.
	RateLimit func(http.Handler) http.Handler
	// Metrics serves the Prometheus scrape endpoint. Nil leaves /metrics unmounted.
	Metrics http.Handler

	Health  map[string]HealthCheck
	Public  []PublicRoutes
	Private []Routes
}

// NewRouter wires the middleware chain and every handler in d.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.AccessLog(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)

	r.Get("/health", healthHandler(d.Health))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	for _, p := range d.Public {
		p.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(d.RequireAuth)
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}
		for _, p := range d.Private {
			p.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found", ErrorDescription: "route not found"})
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
