package domain

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query selects a page of bookmarks.
type Query struct {
	Search   string
	Tag      string
	Page     int
	PageSize int
}

// Normalize clamps paging values instead of rejecting them.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Tag = strings.TrimSpace(q.Tag)
	return q
}

// Pagination is the metadata block of a list envelope.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// NewPagination computes pages = ceil(total/size), never less than 1.
func NewPagination(page, size, total int) Pagination {
	pages := 1
	if total > 0 && size > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{Page: page, PageSize: size, Total: total, Pages: pages}
}

// Page is one slice of a filtered, sorted result.
type Page struct {
	Items      []*Bookmark
	Pagination Pagination
}

// Matches reports whether b passes both the search and the tag filter.
// search must already be lowercased.
func Matches(b *Bookmark, search, tag string) bool {
	if search != "" && !matchesSearch(b, search) {
		return false
	}
	if tag != "" && !b.HasTag(tag) {
		return false
	}
	return true
}

func matchesSearch(b *Bookmark, term string) bool {
	for _, field := range [...]string{b.Title, b.URL, b.Note, b.Content, b.Summary} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	for _, kw := range b.Keywords {
		if strings.Contains(strings.ToLower(kw), term) {
			return true
		}
	}
	return false
}

// Run filters all (in insertion order), sorts newest first and slices the
// requested page. all is not modified.
func Run(all []*Bookmark, q Query) Page {
	q = q.Normalize()
	search := strings.ToLower(q.Search)

	filtered := make([]*Bookmark, 0, len(all))
	for _, b := range all {
		if Matches(b, search, q.Tag) {
			filtered = append(filtered, b)
		}
	}

	SortNewestFirst(filtered)

	total := len(filtered)
	start := (q.Page - 1) * q.PageSize
	items := []*Bookmark{}
	if start < total {
		end := start + q.PageSize
		if end > total {
			end = total
		}
		items = filtered[start:end]
	}

	return Page{
		Items:      items,
		Pagination: NewPagination(q.Page, q.PageSize, total),
	}
}

// SortNewestFirst orders by Timestamp descending. Equal timestamps keep
// their insertion order.
func SortNewestFirst(bs []*Bookmark) {
	sort.SliceStable(bs, func(i, j int) bool {
		return bs[i].Timestamp.After(bs[j].Timestamp)
	})
}
