package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// Generator rebuilds the stats snapshot.
type Generator interface {
	Generate(ctx context.Context) (domain.Stats, error)
}

// StatsRefresher regenerates the snapshot on an interval so it converges
// even after a regeneration failed behind a successful write.
type StatsRefresher struct {
	gen      Generator
	interval time.Duration
	logger   logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewStatsRefresher(gen Generator, interval time.Duration, log logger.Logger) *StatsRefresher {
	return &StatsRefresher{
		gen:      gen,
		interval: interval,
		logger:   log,
		stopCh:   make(chan struct{}),
	}
}

// Start is a no-op when interval is not positive.
func (s *StatsRefresher) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Debug("stats refresher disabled")
		return
	}
	runEvery(ctx, s.interval, s.stopCh, s.logger, "stats refresh", func(ctx context.Context) error {
		st, err := s.gen.Generate(ctx)
		if err != nil {
			return err
		}
		s.logger.Debug("stats snapshot refreshed", logger.Int("total", st.TotalBookmarks))
		return nil
	})
}

func (s *StatsRefresher) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
