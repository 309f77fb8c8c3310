package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/mw"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/status", handlers.Status(d))
	r.Get("/health", handlers.Healthz(d))
	r.Get("/healthz", handlers.Healthz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/readyz", handlers.Readyz(d))
	restricted.Handle("/metrics", metrics.Handler())
}
