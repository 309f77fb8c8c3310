package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
)

// Endpoints is the public route list reported by /status.
var Endpoints = []string{
	"GET /api/bookmarks",
	"POST /api/bookmarks",
	"GET|PUT|DELETE /api/bookmarks/{id}",
	"GET /api/stats",
	"GET /api/stats/cached",
	"GET /api/stats/summary",
	"POST /api/stats/refresh",
	"GET|POST /api/documents",
	"GET|PUT|DELETE /api/documents/id/{id}",
	"GET /api/documents/search",
	"GET /api/documents/tags/{tag}",
	"GET|POST /api/categories",
	"PUT|DELETE /api/categories/{id}",
	"GET|POST /api/categories/{id}/docs",
	"DELETE /api/categories/{id}/docs/{doc_id}",
	"GET /health",
	"GET /readyz",
	"GET /metrics",
}

type statusResponse struct {
	Name       string                 `json:"name"`
	Version    string                 `json:"version"`
	Mode       string                 `json:"mode"`
	Backend    string                 `json:"backend"`
	Endpoints  []string               `json:"endpoints"`
	Components map[string]checkResult `json:"components"`
	Timestamp  string                 `json:"timestamp"`
}

// Status describes the running service. mode is "optimal" when every check
// passes, "degraded" when only non-critical ones fail and "critical"
// otherwise.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, results := runChecks(r.Context(), d)
		writeJSON(w, http.StatusOK, statusResponse{
			Name:       "notedocs",
			Version:    d.Version,
			Mode:       mode(ready, results),
			Backend:    d.Backend,
			Endpoints:  Endpoints,
			Components: results,
			Timestamp:  d.Now().Format(time.RFC3339),
		})
	}
}

func mode(ready bool, results map[string]checkResult) string {
	if !ready {
		return "critical"
	}
	for _, c := range results {
		if !c.OK {
			return "degraded"
		}
	}
	return "optimal"
}
