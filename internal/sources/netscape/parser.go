// Package netscape reads the Netscape bookmark file format exported by
// browsers and by Delicious/Pinboard style services.
package netscape

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

// SourceName labels records imported from a Netscape export.
const SourceName = "netscape"

// Load parses the export at path.
func Load(path string) ([]domain.BookmarkInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bookmarks export: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse returns one input per <DT><A HREF=...> entry, in document order.
//
//   - TAGS (comma separated) and the enclosing folder name become tags
//   - a <DD> right after the entry becomes the note
//   - ADD_DATE (unix seconds) becomes extracted_at
//   - ICON_URI becomes the favicon
//
// Links without an http(s) HREF, such as javascript: bookmarklets, are
// skipped.
func Parse(r io.Reader) ([]domain.BookmarkInput, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse bookmarks html: %w", err)
	}

	out := make([]domain.BookmarkInput, 0)
	doc.Find("dt > a").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !isWebURL(href) {
			return
		}

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = href
		}

		in := domain.BookmarkInput{
			URL:     href,
			Title:   title,
			Tags:    tags(a),
			Favicon: a.AttrOr("icon_uri", ""),
		}
		if dd := a.Parent().NextFiltered("dd"); dd.Length() > 0 {
			in.Note = strings.TrimSpace(dd.Text())
		}
		if ts, ok := unixAttr(a, "add_date"); ok {
			in.ExtractedAt = &ts
		}
		out = append(out, in)
	})
	return out, nil
}

func tags(a *goquery.Selection) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}

	if folder := a.Closest("dl").PrevFiltered("h3"); folder.Length() > 0 {
		add(folder.Text())
	}
	for _, t := range strings.Split(a.AttrOr("tags", ""), ",") {
		add(t)
	}
	return out
}

func unixAttr(s *goquery.Selection, name string) (time.Time, bool) {
	raw, ok := s.Attr(name)
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

func isWebURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
