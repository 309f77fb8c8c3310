package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var (
	registry    []entry // mounted at the root
	apiRegistry []entry // mounted under /api
)

// Register a root-level registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAPI adds a registrar mounted under /api. Its paths are relative
// to /api and it runs behind the host, key and rate-limit guards.
func RegisterAPI(reg Registrar, mws ...Middleware) {
	apiRegistry = append(apiRegistry, entry{reg: reg, mws: mws})
}

// apiGuards is built once so every /api route shares one rate limiter.
func apiGuards(d deps.Deps) []Middleware {
	return []Middleware{
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			RPS:        d.RateLimitRPS,
			Burst:      d.RateBurst,
			MaxEntries: 10000,
			TrustProxy: d.TrustProxy,
		}),
		mw.APIKey(d.APIKeys, d.Logger),
	}
}

func mount(r chi.Router, d deps.Deps, entries []entry) {
	for _, e := range entries {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(e.mws...), d)
	}
}

// RegisterAll is called once from httpserver.New.
func RegisterAll(r chi.Router, d deps.Deps) {
	mount(r, d, registry)
	r.Route("/api", func(api chi.Router) {
		api.Use(apiGuards(d)...)
		mount(api, d, apiRegistry)
	})
}
