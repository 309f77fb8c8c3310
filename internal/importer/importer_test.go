package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/index"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
	"github.com/MrSnakeDoc/notedocs/internal/service"
)

func newFixture(t *testing.T) (*index.MemoryIndex, *service.BookmarkService) {
	t.Helper()
	idx := index.NewMemoryIndex()
	stats := service.NewStatsService(idx, idx, logger.NewNop(), nil)
	return idx, service.NewBookmarkService(idx, stats, logger.NewNop())
}

func TestImportSkipsKnownURLs(t *testing.T) {
	idx, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.BookmarkInput{URL: "https://go.dev/", Title: "Go"}, "test")
	require.NoError(t, err)

	skippedBefore := testutil.ToFloat64(metrics.ImportedRecords.WithLabelValues("test-skip", OutcomeSkipped))

	res, err := New(idx, svc, logger.NewNop(), false).Import(ctx, "test-skip", []domain.BookmarkInput{
		{URL: "https://GO.dev", Title: "Go again"},
		{URL: "https://pkg.go.dev", Title: "Packages"},
		{URL: "https://pkg.go.dev/", Title: "Packages twice"},
		{URL: "https://no-title.dev"},
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Source: "test-skip", Seen: 4, Imported: 1, Skipped: 2, Failed: 1}, res)

	stored, err := idx.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "notedocs-import/test-skip", stored[1].UserAgent)

	assert.Equal(t, skippedBefore+2,
		testutil.ToFloat64(metrics.ImportedRecords.WithLabelValues("test-skip", OutcomeSkipped)))
}

func TestImportDryRunWritesNothing(t *testing.T) {
	idx, svc := newFixture(t)

	res, err := New(idx, svc, logger.NewNop(), true).Import(context.Background(), "dry", []domain.BookmarkInput{
		{URL: "https://a.dev", Title: "A"},
		{URL: "https://b.dev"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Failed)
	stored, err := idx.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestImportWritesOneBatch(t *testing.T) {
	idx, svc := newFixture(t)
	ctx := context.Background()

	inputs := make([]domain.BookmarkInput, 0, 50)
	for i := 0; i < 50; i++ {
		inputs = append(inputs, domain.BookmarkInput{URL: fmt.Sprintf("https://site%02d.dev", i), Title: "site"})
	}

	before := testutil.ToFloat64(metrics.StatsRegenerations.WithLabelValues("ok"))
	res, err := New(idx, svc, logger.NewNop(), false).Import(ctx, "batch", inputs)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Imported)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StatsRegenerations.WithLabelValues("ok"))-before)

	st, ok, err := idx.LoadStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, st.TotalBookmarks)
}

type brokenCreator struct{ *service.BookmarkService }

func (brokenCreator) CreateBatch(context.Context, []*domain.Bookmark) error {
	return errors.New("disk full")
}

func TestImportAbortsOnStorageError(t *testing.T) {
	idx, svc := newFixture(t)
	res, err := New(idx, brokenCreator{svc}, logger.NewNop(), false).Import(context.Background(), "broken",
		[]domain.BookmarkInput{{URL: "https://a.dev", Title: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, res.Seen)
	assert.Zero(t, res.Imported)
}
