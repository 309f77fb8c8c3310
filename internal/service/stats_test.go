package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/index"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

func TestCachedIsEmptyBeforeFirstGenerate(t *testing.T) {
	idx := index.NewMemoryIndex()
	stats := NewStatsService(idx, idx, logger.NewNop(), nil)

	st, err := stats.Cached(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.TotalBookmarks)
	assert.Nil(t, st.LastUpdated)
	assert.NotNil(t, st.DateCounts)
	assert.NotNil(t, st.TopTags)
}

func TestCachedDoesNotRescan(t *testing.T) {
	idx := index.NewMemoryIndex()
	clock := &fixedClock{t: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)}
	stats := NewStatsService(idx, idx, logger.NewNop(), clock.now)
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, domain.NewBookmark("a", domain.BookmarkInput{URL: "https://a.com", Title: "a"}, "", clock.t)))
	_, err := stats.Generate(ctx)
	require.NoError(t, err)

	// written behind the service's back
	require.NoError(t, idx.Insert(ctx, domain.NewBookmark("b", domain.BookmarkInput{URL: "https://b.com", Title: "b"}, "", clock.t)))

	cached, err := stats.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalBookmarks)

	fresh, err := stats.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalBookmarks)
	require.NotNil(t, fresh.LastUpdated)
	assert.Equal(t, clock.t, *fresh.LastUpdated)
}

func TestSummaryUsesSnapshot(t *testing.T) {
	idx := index.NewMemoryIndex()
	clock := &fixedClock{t: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)}
	stats := NewStatsService(idx, idx, logger.NewNop(), clock.now)
	ctx := context.Background()

	for i, day := range []int{10, 10, 8, 1} {
		at := time.Date(2024, 5, day, 9, 0, 0, 0, time.UTC)
		id := string(rune('a' + i))
		require.NoError(t, idx.Insert(ctx, domain.NewBookmark(id, domain.BookmarkInput{URL: "https://" + id + ".com", Title: id}, "", at)))
	}
	_, err := stats.Generate(ctx)
	require.NoError(t, err)

	sum, err := stats.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalBookmarks)
	assert.Equal(t, 2, sum.TodayBookmarks)
	require.Len(t, sum.RecentDays, domain.RecentDays)
	assert.Equal(t, domain.DayCount{Date: "2024-05-10", Count: 2}, sum.RecentDays[0])
	assert.Equal(t, domain.DayCount{Date: "2024-05-08", Count: 1}, sum.RecentDays[2])
	assert.Equal(t, "2024-05-04", sum.RecentDays[6].Date)
	assert.Equal(t, 4, sum.TotalDomains)
}

func TestSummaryTodayMatchesCreatedDateOffUTC(t *testing.T) {
	idx := index.NewMemoryIndex()
	// 02:00 on the 10th at UTC+8 is still the 9th in UTC
	clock := &fixedClock{t: time.Date(2024, 5, 10, 2, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))}
	stats := NewStatsService(idx, idx, logger.NewNop(), clock.now)
	svc := NewBookmarkService(idx, stats, logger.NewNop(), WithBookmarkClock(clock.now))
	ctx := context.Background()

	b, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://a.com", Title: "a"}, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-09", b.CreatedDate)

	sum, err := stats.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TodayBookmarks)
	assert.Equal(t, domain.DayCount{Date: "2024-05-09", Count: 1}, sum.RecentDays[0])
}

// gatedSnapshots blocks the first SaveStats until release is closed.
type gatedSnapshots struct {
	*index.MemoryIndex
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSnapshots) SaveStats(ctx context.Context, st domain.Stats) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.MemoryIndex.SaveStats(ctx, st)
}

func TestGenerateDoesNotSaveStaleScanLast(t *testing.T) {
	idx := index.NewMemoryIndex()
	snaps := &gatedSnapshots{MemoryIndex: idx, entered: make(chan struct{}), release: make(chan struct{})}
	stats := NewStatsService(idx, snaps, logger.NewNop(), nil)
	svc := NewBookmarkService(idx, stats, logger.NewNop())
	ctx := context.Background()

	// a background refresh scans the empty collection and stalls on save
	refreshed := make(chan error, 1)
	go func() {
		_, err := stats.Generate(ctx)
		refreshed <- err
	}()
	<-snaps.entered

	created := make(chan error, 1)
	go func() {
		_, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://a.com", Title: "a"}, "")
		created <- err
	}()

	// give the create time to reach its own regeneration
	time.Sleep(50 * time.Millisecond)
	close(snaps.release)
	require.NoError(t, <-refreshed)
	require.NoError(t, <-created)

	cached, err := stats.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalBookmarks)
}
