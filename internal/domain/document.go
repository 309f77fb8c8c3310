package domain

import (
	"strings"
	"time"
)

// PreviewLength bounds the content excerpt returned by document search.
const PreviewLength = 200

// Document is a record of the relational collection. Title is the natural
// key: writing a document whose title already exists overwrites that row.
type Document struct {
	ID        int64     `json:"id"`
	UID       int64     `json:"uid"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Favicon   string    `json:"favicon"`
	Tags      string    `json:"tags"` // comma-delimited
	Evaluate  int       `json:"evaluate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentInput is the body of a create (upsert) request.
type DocumentInput struct {
	UID      int64  `json:"uid" validate:"required"`
	URL      string `json:"url"`
	Title    string `json:"title" validate:"required,min=1,max=500"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	Favicon  string `json:"favicon"`
	Tags     string `json:"tags"`
	Evaluate int    `json:"evaluate" validate:"gte=0"`
}

// DocumentPatch is merged onto an existing document.
type DocumentPatch struct {
	UID      *int64  `json:"uid"`
	URL      *string `json:"url"`
	Title    *string `json:"title" validate:"omitempty,min=1,max=500"`
	Summary  *string `json:"summary"`
	Content  *string `json:"content"`
	Source   *string `json:"source"`
	Favicon  *string `json:"favicon"`
	Tags     *string `json:"tags"`
	Evaluate *int    `json:"evaluate" validate:"omitempty,gte=0"`
}

// ToInput turns a stored document back into an upsert payload.
func (d *Document) ToInput() DocumentInput {
	return DocumentInput{
		UID:      d.UID,
		URL:      d.URL,
		Title:    d.Title,
		Summary:  d.Summary,
		Content:  d.Content,
		Source:   d.Source,
		Favicon:  d.Favicon,
		Tags:     d.Tags,
		Evaluate: d.Evaluate,
	}
}

// Merge returns in with every non-nil patch field applied.
func (p DocumentPatch) Merge(in DocumentInput) DocumentInput {
	if p.UID != nil {
		in.UID = *p.UID
	}
	if p.URL != nil {
		in.URL = *p.URL
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Summary != nil {
		in.Summary = *p.Summary
	}
	if p.Content != nil {
		in.Content = *p.Content
	}
	if p.Source != nil {
		in.Source = *p.Source
	}
	if p.Favicon != nil {
		in.Favicon = *p.Favicon
	}
	if p.Tags != nil {
		in.Tags = *p.Tags
	}
	if p.Evaluate != nil {
		in.Evaluate = *p.Evaluate
	}
	return in
}

// Preview truncates content to PreviewLength runes followed by "...".
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= PreviewLength {
		return content
	}
	return string(r[:PreviewLength]) + "..."
}

// SplitTags turns the delimited tag column into a clean slice.
func SplitTags(tags string) []string {
	out := make([]string, 0, 4)
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Category groups documents for a single owner.
type Category struct {
	ID        int64     `json:"id"`
	UID       int64     `json:"uid"`
	Name      string    `json:"name"`
	Tags      string    `json:"tags"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryInput struct {
	UID  int64  `json:"uid" validate:"required"`
	Name string `json:"name" validate:"required,min=1,max=255"`
	Tags string `json:"tags"`
	Icon string `json:"icon"`
}

// CategoryPatch needs at least one non-nil field.
type CategoryPatch struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Tags *string `json:"tags"`
	Icon *string `json:"icon"`
}

func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Tags == nil && p.Icon == nil
}
