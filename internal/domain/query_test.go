package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func bm(id string, offset time.Duration, mutate func(*Bookmark)) *Bookmark {
	b := NewBookmark(id, BookmarkInput{URL: "https://" + id + ".example", Title: id}, "", base.Add(offset))
	if mutate != nil {
		mutate(b)
	}
	return b
}

func ids(bs []*Bookmark) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name         string
		in           Query
		wantPage     int
		wantPageSize int
	}{
		{"zero values", Query{}, 1, DefaultPageSize},
		{"negative page", Query{Page: -3, PageSize: 5}, 1, 5},
		{"oversized page", Query{Page: 2, PageSize: 1000}, 2, MaxPageSize},
		{"exact max", Query{Page: 1, PageSize: 100}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantPageSize, q.PageSize)
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 20, 1},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(1, tt.size, tt.total).Pages)
		})
	}
}

func TestRunSearchMatchesAnyField(t *testing.T) {
	all := []*Bookmark{
		bm("title", 0, func(b *Bookmark) { b.Title = "Learning GO" }),
		bm("note", 1, func(b *Bookmark) { b.Note = "go routines" }),
		bm("content", 2, func(b *Bookmark) { b.Content = "about golang" }),
		bm("summary", 3, func(b *Bookmark) { b.Summary = "GOPHER" }),
		bm("keyword", 4, func(b *Bookmark) { b.Keywords = []string{"Gopls"} }),
		bm("none", 5, func(b *Bookmark) { b.URL = "https://rust.example" }),
	}

	page := Run(all, Query{Search: "Go"})

	assert.Equal(t, []string{"keyword", "summary", "content", "note", "title"}, ids(page.Items))
	assert.Equal(t, 5, page.Pagination.Total)
}

func TestRunSearchMatchesURL(t *testing.T) {
	all := []*Bookmark{
		NewBookmark("a", BookmarkInput{URL: "https://a.com", Title: "A"}, "", base),
	}

	page := Run(all, Query{Search: "a.com"})
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].ID)

	page = Run(all, Query{Search: "zzz"})
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestRunTagIsExactMembership(t *testing.T) {
	all := []*Bookmark{
		bm("go", 0, func(b *Bookmark) { b.Tags = []string{"go"} }),
		bm("golang", 1, func(b *Bookmark) { b.Tags = []string{"golang"} }),
		bm("both", 2, func(b *Bookmark) { b.Tags = []string{"dev", "go"} }),
	}

	page := Run(all, Query{Tag: "go"})
	assert.Equal(t, []string{"both", "go"}, ids(page.Items))
}

func TestRunCombinesSearchAndTag(t *testing.T) {
	all := []*Bookmark{
		bm("a", 0, func(b *Bookmark) { b.Title = "chi router"; b.Tags = []string{"go"} }),
		bm("b", 1, func(b *Bookmark) { b.Title = "chi middleware"; b.Tags = []string{"http"} }),
		bm("c", 2, func(b *Bookmark) { b.Title = "zap"; b.Tags = []string{"go"} }),
	}

	page := Run(all, Query{Search: "CHI", Tag: "go"})
	assert.Equal(t, []string{"a"}, ids(page.Items))
}

func TestRunStableOnEqualTimestamps(t *testing.T) {
	all := []*Bookmark{
		bm("first", 0, nil),
		bm("second", 0, nil),
		bm("newer", time.Hour, nil),
		bm("third", 0, nil),
	}

	page := Run(all, Query{})
	assert.Equal(t, []string{"newer", "first", "second", "third"}, ids(page.Items))
	assert.Equal(t, []string{"first", "second", "newer", "third"}, ids(all), "input must not be reordered")
}

func TestRunPagesConcatenateToFullSet(t *testing.T) {
	all := make([]*Bookmark, 0, 23)
	for i := 0; i < 23; i++ {
		all = append(all, bm(fmt.Sprintf("b%02d", i), time.Duration(i%5)*time.Minute, nil))
	}
	full := Run(all, Query{PageSize: 100}).Items
	require.Len(t, full, 23)

	for _, size := range []int{1, 4, 7, 23, 50} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			first := Run(all, Query{Page: 1, PageSize: size})
			pages := first.Pagination.Pages
			assert.Equal(t, (23+size-1)/size, pages)

			var joined []*Bookmark
			for p := 1; p <= pages; p++ {
				joined = append(joined, Run(all, Query{Page: p, PageSize: size}).Items...)
			}
			assert.Equal(t, ids(full), ids(joined))
		})
	}
}

func TestRunPageBeyondEnd(t *testing.T) {
	all := []*Bookmark{bm("a", 0, nil), bm("b", 1, nil)}

	page := Run(all, Query{Page: 9, PageSize: 1})
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
	assert.Equal(t, 9, page.Pagination.Page)
}

func TestNewBookmarkDerivesFields(t *testing.T) {
	b := NewBookmark("id-1", BookmarkInput{URL: "https://www.Example.com/path", Title: "T"}, "curl/8", base)

	assert.Equal(t, "example.com", b.Domain)
	assert.Equal(t, DefaultBookmarkType, b.Type)
	assert.Equal(t, "2024-03-10", b.CreatedDate)
	assert.Equal(t, "curl/8", b.UserAgent)
	assert.NotNil(t, b.Tags)
	assert.NotNil(t, b.Keywords)

	b = NewBookmark("id-2", BookmarkInput{URL: "https://a.com", Title: "T", Domain: "custom", Type: "article"}, "", base)
	assert.Equal(t, "custom", b.Domain)
	assert.Equal(t, "article", b.Type)
}

func TestBookmarkApplyOnlyTouchesSuppliedFields(t *testing.T) {
	b := bm("a", 0, func(b *Bookmark) {
		b.Note = "keep"
		b.Tags = []string{"x"}
	})
	title := "new title"
	later := base.Add(time.Hour)

	b.Apply(BookmarkPatch{Title: &title}, later)

	assert.Equal(t, "new title", b.Title)
	assert.Equal(t, "keep", b.Note)
	assert.Equal(t, []string{"x"}, b.Tags)
	require.NotNil(t, b.UpdatedAt)
	assert.True(t, b.UpdatedAt.Equal(later))
	assert.True(t, b.Timestamp.Equal(base), "timestamp is immutable")
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "a.com", DomainOf("https://a.com"))
	assert.Equal(t, "a.com:8080", DomainOf("http://www.a.com:8080/x"))
	assert.Equal(t, "", DomainOf("not a url"))
	assert.Equal(t, "", DomainOf(""))
}
