package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

const checkTimeout = 2 * time.Second

type checkResult struct {
	OK       bool   `json:"ok"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]checkResult `json:"checks"`
}

// runChecks pings every dependency. ready is false as soon as one critical
// check fails; non-critical failures only show up in the map.
func runChecks(ctx context.Context, d deps.Deps) (ready bool, results map[string]checkResult) {
	ready = true
	results = make(map[string]checkResult, len(d.Checks))
	for _, c := range d.Checks {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.Ping(cctx)
		cancel()

		res := checkResult{OK: err == nil, Critical: c.Critical}
		if err != nil {
			res.Error = err.Error()
			if c.Critical {
				ready = false
			}
			d.Logger.Warn("dependency check failed",
				logger.String("check", c.Name),
				logger.Bool("critical", c.Critical),
				logger.Error(err))
		}
		results[c.Name] = res
	}
	return ready, results
}

func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, results := runChecks(r.Context(), d)
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, status, readyzResponse{Ready: ready, Checks: results})
	}
}
