package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/service"
)

// Check is one dependency checked by /readyz and reported by /status.
type Check struct {
	Name     string
	Critical bool // a failing non-critical check degrades, it does not unready
	Ping     func(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed to reach /api
	AllowedCIDRS []string // IPs allowed to reach /metrics and /readyz
	TrustProxy   bool     // true behind a trusted reverse proxy
	APIKeys      []string // empty disables the key check
	CORSOrigins  []string
	RateLimitRPS float64
	RateBurst    int

	Backend string // active bookmark backend, shown on /status

	Bookmarks  *service.BookmarkService
	Stats      *service.StatsService
	Documents  *service.DocumentService
	Categories *service.CategoryService
	Checks     []Check
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
