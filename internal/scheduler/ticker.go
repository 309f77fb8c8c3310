package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// runEvery calls fn once immediately, then on every tick until ctx is done
// or stop is closed. It does not block.
func runEvery(ctx context.Context, interval time.Duration, stop <-chan struct{}, log logger.Logger, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Warn("initial "+name+" run failed", logger.Error(err))
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					log.Error(name+" run failed", logger.Error(err))
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
