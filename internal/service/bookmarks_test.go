package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/index"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("bm-%03d", n)
	}
}

func newBookmarkFixture(t *testing.T) (*BookmarkService, *StatsService, *index.MemoryIndex, *fixedClock) {
	t.Helper()
	idx := index.NewMemoryIndex()
	clock := &fixedClock{t: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	stats := NewStatsService(idx, idx, logger.NewNop(), clock.now)
	svc := NewBookmarkService(idx, stats, logger.NewNop(), WithIDs(sequentialIDs()), WithBookmarkClock(clock.now))
	return svc, stats, idx, clock
}

func TestCreateAssignsIdentityAndRegenerates(t *testing.T) {
	svc, stats, _, _ := newBookmarkFixture(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://www.a.com/x", Title: "A", Tags: []string{"go"}}, "curl/8")
	require.NoError(t, err)
	assert.Equal(t, "bm-001", b.ID)
	assert.Equal(t, "2024-05-10", b.CreatedDate)
	assert.Equal(t, "a.com", b.Domain)
	assert.Equal(t, "bookmark", b.Type)
	assert.Equal(t, "curl/8", b.UserAgent)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	cached, err := stats.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalBookmarks)
	assert.Equal(t, []domain.LabelCount{{Name: "go", Count: 1}}, cached.TopTags)
}

func TestCreateValidates(t *testing.T) {
	svc, _, _, _ := newBookmarkFixture(t)

	_, err := svc.Create(context.Background(), domain.BookmarkInput{URL: "https://a.com"}, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
}

func TestIDsAreUniqueWithDefaultGenerator(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewBookmarkService(idx, nil, logger.NewNop())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		b, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://same.dev", Title: "dup"}, "")
		require.NoError(t, err)
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
}

func TestListScenario(t *testing.T) {
	svc, _, _, _ := newBookmarkFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://a.com", Title: "A"}, "")
	require.NoError(t, err)

	page, err := svc.List(ctx, domain.Query{Search: "a.com"}.Normalize())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].Title)

	page, err = svc.List(ctx, domain.Query{Search: "zzz"}.Normalize())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestUpdateIsPartial(t *testing.T) {
	svc, stats, _, clock := newBookmarkFixture(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://a.com", Title: "A", Note: "keep", Tags: []string{"x"}}, "")
	require.NoError(t, err)

	clock.advance(time.Hour)
	title := "A2"
	tags := []string{"y", "z"}
	up, err := svc.Update(ctx, b.ID, domain.BookmarkPatch{Title: &title, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "A2", up.Title)
	assert.Equal(t, "keep", up.Note)
	assert.Equal(t, "https://a.com", up.URL)
	assert.Equal(t, []string{"y", "z"}, up.Tags)
	require.NotNil(t, up.UpdatedAt)
	assert.Equal(t, clock.t, *up.UpdatedAt)

	cached, err := stats.Cached(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.TopTags, 2)

	_, err = svc.Update(ctx, "missing", domain.BookmarkPatch{Title: &title})
	require.ErrorIs(t, err, domain.ErrNotFound)

	empty := ""
	_, err = svc.Update(ctx, b.ID, domain.BookmarkPatch{Title: &empty})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteRegenerates(t *testing.T) {
	svc, stats, _, _ := newBookmarkFixture(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://a.com", Title: "A"}, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, b.ID))

	cached, err := stats.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.TotalBookmarks)

	require.ErrorIs(t, svc.Delete(ctx, b.ID), domain.ErrNotFound)
}

type brokenSnapshots struct{}

func (brokenSnapshots) SaveStats(context.Context, domain.Stats) error { return errors.New("disk full") }

func (brokenSnapshots) LoadStats(context.Context) (domain.Stats, bool, error) {
	return domain.Stats{}, false, errors.New("disk full")
}

func TestWriteSucceedsWhenRegenerationFails(t *testing.T) {
	idx := index.NewMemoryIndex()
	stats := NewStatsService(idx, brokenSnapshots{}, logger.NewNop(), nil)
	svc := NewBookmarkService(idx, stats, logger.NewNop())

	before := testutil.ToFloat64(metrics.StatsRegenerations.WithLabelValues("error"))
	b, err := svc.Create(context.Background(), domain.BookmarkInput{URL: "https://a.com", Title: "A"}, "")
	require.NoError(t, err)
	all, err := idx.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.NotEmpty(t, b.ID)

	after := testutil.ToFloat64(metrics.StatsRegenerations.WithLabelValues("error"))
	assert.Equal(t, 1.0, after-before)
}

type failingRepo struct{ index.MemoryIndex }

func (*failingRepo) List(context.Context) ([]*domain.Bookmark, error) {
	return nil, errors.New("read bookmarks.json: permission denied")
}

func TestListPropagatesStorageErrors(t *testing.T) {
	svc := NewBookmarkService(&failingRepo{}, nil, logger.NewNop())
	_, err := svc.List(context.Background(), domain.Query{}.Normalize())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

// slowRepo stalls inside every Modify so overlapping updates would
// interleave if the read-modify-write were not atomic.
type slowRepo struct{ *index.MemoryIndex }

func (r slowRepo) Modify(ctx context.Context, id string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error) {
	return r.MemoryIndex.Modify(ctx, id, func(b *domain.Bookmark) error {
		time.Sleep(20 * time.Millisecond)
		return fn(b)
	})
}

func TestConcurrentUpdatesKeepEveryField(t *testing.T) {
	repo := slowRepo{index.NewMemoryIndex()}
	svc := NewBookmarkService(repo, nil, logger.NewNop(), WithIDs(sequentialIDs()))
	ctx := context.Background()

	b, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://a.com", Title: "A", Note: "old"}, "")
	require.NoError(t, err)

	title, note := "A2", "new note"
	var wg sync.WaitGroup
	for _, p := range []domain.BookmarkPatch{{Title: &title}, {Note: &note}} {
		wg.Add(1)
		go func(p domain.BookmarkPatch) {
			defer wg.Done()
			_, err := svc.Update(ctx, b.ID, p)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)
	assert.Equal(t, "new note", got.Note)
}

func TestCreateBatchRegeneratesOnce(t *testing.T) {
	svc, stats, idx, _ := newBookmarkFixture(t)
	ctx := context.Background()

	var batch []*domain.Bookmark
	for _, u := range []string{"https://a.com", "https://b.com"} {
		b, err := svc.Prepare(domain.BookmarkInput{URL: u, Title: u}, "import")
		require.NoError(t, err)
		batch = append(batch, b)
	}
	_, err := svc.Prepare(domain.BookmarkInput{URL: "https://c.com"}, "import")
	require.ErrorIs(t, err, domain.ErrValidation)

	before := testutil.ToFloat64(metrics.StatsRegenerations.WithLabelValues("ok"))
	require.NoError(t, svc.CreateBatch(ctx, batch))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StatsRegenerations.WithLabelValues("ok"))-before)

	all, err := idx.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cached, err := stats.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cached.TotalBookmarks)

	require.ErrorIs(t, svc.CreateBatch(ctx, batch), domain.ErrConflict)
}
