package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
)

// StatsService regenerates and serves the bookmark stats snapshot. Calendar
// days are UTC, the same location bookmarks are stamped in.
type StatsService struct {
	mu    sync.Mutex // serializes Generate
	repo  BookmarkRepository
	snaps SnapshotStore
	log   logger.Logger
	now   func() time.Time
}

func NewStatsService(repo BookmarkRepository, snaps SnapshotStore, log logger.Logger, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{repo: repo, snaps: snaps, log: log, now: now}
}

// Generate rescans every bookmark and overwrites the persisted snapshot.
// Concurrent calls run one at a time so an older scan never overwrites a
// newer one.
func (s *StatsService) Generate(ctx context.Context) (domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.StatsRegenerationDuration)

	all, err := s.repo.List(ctx)
	if err != nil {
		metrics.StatsRegenerations.WithLabelValues("error").Inc()
		return domain.Stats{}, fmt.Errorf("list bookmarks: %w", err)
	}

	st := domain.Aggregate(all, s.now().UTC())
	if err := s.snaps.SaveStats(ctx, st); err != nil {
		metrics.StatsRegenerations.WithLabelValues("error").Inc()
		return domain.Stats{}, fmt.Errorf("save stats: %w", err)
	}

	metrics.StatsRegenerations.WithLabelValues("ok").Inc()
	metrics.BookmarksTotal.Set(float64(st.TotalBookmarks))
	s.log.Debug("stats regenerated",
		logger.Int("total", st.TotalBookmarks),
		logger.Duration("took", timer.Duration()))
	return st, nil
}

// Cached returns the last snapshot, or an empty one when none was saved.
func (s *StatsService) Cached(ctx context.Context) (domain.Stats, error) {
	st, ok, err := s.snaps.LoadStats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	if !ok {
		return domain.EmptyStats(), nil
	}
	return st, nil
}

// Summary is computed from the cached snapshot, never from a rescan.
func (s *StatsService) Summary(ctx context.Context) (domain.Summary, error) {
	st, err := s.Cached(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(st, s.now().UTC()), nil
}
