package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/index"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// deadClient points at a port nothing listens on.
func deadClient(t *testing.T) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSnapshotFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	fallback := index.NewMemoryIndex()
	s := NewStore(deadClient(t), fallback, 0, logger.NewNop())

	_, ok, err := s.LoadStats(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	st := domain.EmptyStats()
	st.TotalBookmarks = 7
	require.NoError(t, s.SaveStats(ctx, st))

	got, ok, err := fallback.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, got.TotalBookmarks)

	got, ok, err = s.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, got.TotalBookmarks)

	assert.Error(t, s.Ping(ctx))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	s := NewStore(deadClient(t), index.NewMemoryIndex(), 0, logger.NewNop())

	for i := 0; i < 5; i++ {
		_, _, err := s.LoadStats(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, "open", s.State())
	assert.Error(t, s.Invalidate(ctx))
}

// fakeRedis answers GET, SET, DEL and PING from a map through a process
// hook, so no connection is ever dialed. Commands named in failing return
// an error.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	failing map[string]bool
}

func newFakeRedis(t *testing.T) (*fakeRedis, *redis.Client) {
	t.Helper()
	f := &fakeRedis{data: map[string]string{}, failing: map[string]bool{}}
	c := redis.NewClient(&redis.Options{Addr: "fake:6379", MaxRetries: -1})
	c.AddHook(f)
	t.Cleanup(func() { _ = c.Close() })
	return f, c
}

func (f *fakeRedis) fail(cmds ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = map[string]bool{}
	for _, c := range cmds {
		f.failing[c] = true
	}
}

func (f *fakeRedis) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failing[cmd.Name()] {
			err := errors.New("connection reset by peer")
			cmd.SetErr(err)
			return err
		}
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StatusCmd:
			if cmd.Name() == "set" {
				switch v := args[2].(type) {
				case []byte:
					f.data[fmt.Sprint(args[1])] = string(v)
				default:
					f.data[fmt.Sprint(args[1])] = fmt.Sprint(v)
				}
			}
			c.SetVal("OK")
		case *redis.StringCmd:
			v, ok := f.data[fmt.Sprint(args[1])]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.IntCmd:
			delete(f.data, fmt.Sprint(args[1]))
			c.SetVal(1)
		}
		return nil
	}
}

func statsWithTotal(n int) domain.Stats {
	st := domain.EmptyStats()
	st.TotalBookmarks = n
	return st
}

func TestSnapshotServedFromRedis(t *testing.T) {
	ctx := context.Background()
	fake, client := newFakeRedis(t)
	s := NewStore(client, index.NewMemoryIndex(), time.Minute, logger.NewNop())

	require.NoError(t, s.SaveStats(ctx, statsWithTotal(3)))
	raw, ok := fake.value(KeyStatsSnapshot)
	require.True(t, ok)
	assert.Contains(t, raw, `"total_bookmarks":3`)

	got, ok, err := s.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.TotalBookmarks)
	assert.NoError(t, s.Ping(ctx))
}

func TestFailedWriteDropsCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	fake, client := newFakeRedis(t)
	s := NewStore(client, index.NewMemoryIndex(), 0, logger.NewNop())

	require.NoError(t, s.SaveStats(ctx, statsWithTotal(1)))

	fake.fail("set")
	require.NoError(t, s.SaveStats(ctx, statsWithTotal(2)))
	_, ok := fake.value(KeyStatsSnapshot)
	assert.False(t, ok, "old snapshot must not survive a failed write")

	fake.fail()
	got, ok, err := s.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalBookmarks)
}

func TestStaleSnapshotIgnoredUntilRewritten(t *testing.T) {
	ctx := context.Background()
	fake, client := newFakeRedis(t)
	s := NewStore(client, index.NewMemoryIndex(), 0, logger.NewNop())

	require.NoError(t, s.SaveStats(ctx, statsWithTotal(1)))

	// redis drops out for both the write and the cleanup
	fake.fail("set", "del")
	require.NoError(t, s.SaveStats(ctx, statsWithTotal(2)))
	raw, _ := fake.value(KeyStatsSnapshot)
	assert.Contains(t, raw, `"total_bookmarks":1`)

	fake.fail()
	got, ok, err := s.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalBookmarks)

	raw, _ = fake.value(KeyStatsSnapshot)
	assert.Contains(t, raw, `"total_bookmarks":2`, "the fallback value is written back")

	got, _, err = s.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalBookmarks)
}
