package domain

import (
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for created_date buckets.
const DateLayout = "2006-01-02"

// DefaultBookmarkType is assigned when a create request carries no type.
const DefaultBookmarkType = "bookmark"

// Bookmark is a saved page in the JSON collection.
//
// Titles are not unique here: creating is a plain append, the ID is the only
// identity.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is a random UUIDv4 assigned on create.
	ID string `json:"id"`

	// URL is the page address. Never empty.
	URL string `json:"url"`

	// ─────────────────────────────
	// Description (mutable through Update)
	// ─────────────────────────────

	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Note     string   `json:"note,omitempty"`
	Content  string   `json:"content,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords"`

	// ─────────────────────────────
	// Capture metadata (set on create)
	// ─────────────────────────────

	Favicon     string     `json:"favicon,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	Type        string     `json:"type"`
	UserAgent   string     `json:"user_agent,omitempty"`
	ExtractedAt *time.Time `json:"extracted_at,omitempty"`

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	// Timestamp is the creation instant and the sort key for listings.
	Timestamp time.Time `json:"timestamp"`

	// CreatedDate is Timestamp formatted with DateLayout. It only exists to
	// bucket the date histogram.
	CreatedDate string `json:"created_date"`

	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// BookmarkInput is the body of a create request.
type BookmarkInput struct {
	URL         string     `json:"url" validate:"required,min=1"`
	Title       string     `json:"title" validate:"required,min=1,max=500"`
	Tags        []string   `json:"tags"`
	Note        string     `json:"note"`
	Favicon     string     `json:"favicon"`
	Domain      string     `json:"domain"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary"`
	Keywords    []string   `json:"keywords"`
	Type        string     `json:"type"`
	ExtractedAt *time.Time `json:"extracted_at"`
}

// BookmarkPatch is a partial update. Nil fields are left untouched.
type BookmarkPatch struct {
	Title    *string   `json:"title" validate:"omitempty,min=1,max=500"`
	Tags     *[]string `json:"tags"`
	Note     *string   `json:"note"`
	Content  *string   `json:"content"`
	Summary  *string   `json:"summary"`
	Keywords *[]string `json:"keywords"`
}

// NewBookmark builds a record from a validated input. id and now are
// supplied by the caller so the result is deterministic under test.
func NewBookmark(id string, in BookmarkInput, userAgent string, now time.Time) *Bookmark {
	b := &Bookmark{
		ID:          id,
		URL:         in.URL,
		Title:       in.Title,
		Tags:        nonNil(in.Tags),
		Note:        in.Note,
		Content:     in.Content,
		Summary:     in.Summary,
		Keywords:    nonNil(in.Keywords),
		Favicon:     in.Favicon,
		Domain:      in.Domain,
		Type:        in.Type,
		UserAgent:   userAgent,
		ExtractedAt: in.ExtractedAt,
		Timestamp:   now,
		CreatedDate: now.Format(DateLayout),
	}
	if b.Domain == "" {
		b.Domain = DomainOf(in.URL)
	}
	if b.Type == "" {
		b.Type = DefaultBookmarkType
	}
	return b
}

// Apply copies the non-nil fields of p onto b and stamps UpdatedAt.
func (b *Bookmark) Apply(p BookmarkPatch, now time.Time) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Tags != nil {
		b.Tags = nonNil(*p.Tags)
	}
	if p.Note != nil {
		b.Note = *p.Note
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	if p.Summary != nil {
		b.Summary = *p.Summary
	}
	if p.Keywords != nil {
		b.Keywords = nonNil(*p.Keywords)
	}
	b.UpdatedAt = &now
}

// HasTag reports exact membership, not substring.
func (b *Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores never hand out shared slices.
func (b *Bookmark) Clone() *Bookmark {
	if b == nil {
		return nil
	}
	c := *b
	c.Tags = append([]string{}, b.Tags...)
	c.Keywords = append([]string{}, b.Keywords...)
	if b.ExtractedAt != nil {
		t := *b.ExtractedAt
		c.ExtractedAt = &t
	}
	if b.UpdatedAt != nil {
		t := *b.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// DomainOf returns the host of rawURL without a leading "www.", or "" when
// the URL has no host.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
