package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
)

// Stats recomputes the snapshot from the live collection.
// It backs both GET /api/stats and POST /api/stats/refresh.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Stats.Generate(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// CachedStats returns the last persisted snapshot without touching the
// collection.
func CachedStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Stats.Cached(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func StatsSummary(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := d.Stats.Summary(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}
