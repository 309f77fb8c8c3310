package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// SnapshotStore is the durable place stats live when Redis is not.
type SnapshotStore interface {
	SaveStats(ctx context.Context, s domain.Stats) error
	LoadStats(ctx context.Context) (domain.Stats, bool, error)
}

// Store caches the stats snapshot in Redis in front of a durable
// SnapshotStore. Redis failures never fail a call: they trip the breaker and
// the fallback answers instead.
type Store struct {
	client   *redis.Client
	fallback SnapshotStore
	cb       *gobreaker.CircuitBreaker
	ttl      time.Duration
	log      logger.Logger

	// stale is set when a newer snapshot reached the fallback but Redis may
	// still hold an older one. Reads skip Redis until a write-back succeeds.
	stale atomic.Bool
}

// NewStore wraps client. ttl 0 keeps the key forever.
func NewStore(client *redis.Client, fallback SnapshotStore, ttl time.Duration, log logger.Logger) *Store {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-snapshots",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})

	return &Store{
		client:   client,
		fallback: fallback,
		cb:       cb,
		ttl:      ttl,
		log:      log,
	}
}

// SaveStats writes the fallback first; it is the source of truth. When the
// Redis write fails the cached key is dropped, and if that fails too the
// store stops reading Redis until it holds the current snapshot again.
func (s *Store) SaveStats(ctx context.Context, st domain.Stats) error {
	if err := s.fallback.SaveStats(ctx, st); err != nil {
		return err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := s.set(ctx, data); err != nil {
		s.log.Warn("redis snapshot write skipped", logger.Error(err))
		if err := s.Invalidate(ctx); err != nil {
			s.stale.Store(true)
			s.log.Warn("redis snapshot marked stale", logger.Error(err))
		}
		return nil
	}
	s.stale.Store(false)
	return nil
}

// LoadStats prefers Redis and falls back on a miss, an error, an open
// breaker or a stale key. A fallback hit is written back to Redis.
func (s *Store) LoadStats(ctx context.Context) (domain.Stats, bool, error) {
	if !s.stale.Load() {
		st, ok, err := s.get(ctx)
		if err == nil && ok {
			return st, true, nil
		}
		if err != nil {
			s.log.Debug("redis snapshot read failed, using fallback", logger.Error(err))
			return s.fallback.LoadStats(ctx)
		}
	}

	st, ok, err := s.fallback.LoadStats(ctx)
	if err != nil || !ok {
		return st, ok, err
	}
	if data, err := json.Marshal(st); err == nil {
		if err := s.set(ctx, data); err == nil {
			s.stale.Store(false)
		}
	}
	return st, true, nil
}

func (s *Store) set(ctx context.Context, data []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, KeyStatsSnapshot, data, s.ttl).Err()
	})
	return err
}

// get reports ok=false on a miss or an undecodable value.
func (s *Store) get(ctx context.Context) (domain.Stats, bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		data, err := s.client.Get(ctx, KeyStatsSnapshot).Bytes()
		if errors.Is(err, redis.Nil) {
			// a miss is not a failure
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return domain.Stats{}, false, err
	}
	data, ok := res.([]byte)
	if !ok {
		return domain.Stats{}, false, nil
	}
	var st domain.Stats
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warn("corrupt redis snapshot ignored", logger.String("key", KeyStatsSnapshot))
		return domain.Stats{}, false, nil
	}
	return st, true, nil
}

// Invalidate drops the cached snapshot.
func (s *Store) Invalidate(ctx context.Context) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, KeyStatsSnapshot).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}

// Ping reports Redis reachability for the readiness check. An open breaker
// reports as down.
func (s *Store) Ping(ctx context.Context) error {
	if s.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("circuit breaker %s", s.State())
	}
	return s.client.Ping(ctx).Err()
}

// State returns the breaker state name.
func (s *Store) State() string { return s.cb.State().String() }
