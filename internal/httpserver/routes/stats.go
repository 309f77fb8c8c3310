package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerStats) }

func registerStats(r chi.Router, d deps.Deps) {
	r.Get("/stats", handlers.Stats(d))
	r.Post("/stats/refresh", handlers.Stats(d))
	r.Get("/stats/cached", handlers.CachedStats(d))
	r.Get("/stats/summary", handlers.StatsSummary(d))
}
