package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

func TestDocumentCreateGetRoundTrip(t *testing.T) {
	docs, _ := newSQLServices(t)
	ctx := context.Background()

	in := domain.DocumentInput{
		UID: 3, URL: "https://go.dev", Title: "Go", Summary: "lang",
		Content: "body", Source: "web", Favicon: "f.ico", Tags: "go,lang", Evaluate: 2,
	}
	d, err := docs.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in, d.ToInput())

	got, err := docs.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ToInput(), got.ToInput())
}

func TestDocumentCreateValidates(t *testing.T) {
	docs, _ := newSQLServices(t)

	_, err := docs.Create(context.Background(), domain.DocumentInput{Title: "no owner"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = docs.Create(context.Background(), domain.DocumentInput{UID: 1, Title: "x", Evaluate: -1})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestDocumentUpdateMerges(t *testing.T) {
	docs, _ := newSQLServices(t)
	ctx := context.Background()

	d, err := docs.Create(ctx, domain.DocumentInput{UID: 1, Title: "t", Summary: "keep", Tags: "a"})
	require.NoError(t, err)

	tags := "a,b"
	up, err := docs.Update(ctx, d.ID, domain.DocumentPatch{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "keep", up.Summary)
	assert.Equal(t, "a,b", up.Tags)
	assert.Equal(t, "t", up.Title)

	_, err = docs.Update(ctx, 404, domain.DocumentPatch{Tags: &tags})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, docs.Delete(ctx, d.ID))
	require.ErrorIs(t, docs.Delete(ctx, d.ID), domain.ErrNotFound)
}

func TestDocumentSearchAndTags(t *testing.T) {
	docs, _ := newSQLServices(t)
	ctx := context.Background()

	_, err := docs.Create(ctx, domain.DocumentInput{UID: 1, Title: "Postgres tips", Tags: "db"})
	require.NoError(t, err)
	_, err = docs.Create(ctx, domain.DocumentInput{UID: 2, Title: "Cooking", Tags: "food"})
	require.NoError(t, err)

	_, err = docs.Search(ctx, "  ", 0, Window{})
	require.ErrorIs(t, err, domain.ErrValidation)

	hits, err := docs.Search(ctx, "postgres", 0, Window{})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	byTag, err := docs.ByTag(ctx, "food", 0, Window{})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Cooking", byTag[0].Title)

	mine, total, err := docs.List(ctx, 2, Window{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 1, total)
}
