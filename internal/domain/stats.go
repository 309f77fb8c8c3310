package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TopN bounds top_tags and top_domains.
const TopN = 10

// RecentDays is the window of the summary histogram.
const RecentDays = 7

// LabelCount is one entry of a top list. On the wire it is a two-element
// array: ["go", 3].
type LabelCount struct {
	Name  string
	Count int
}

func (lc LabelCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{lc.Name, lc.Count})
}

func (lc *LabelCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("label count: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("label count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &lc.Name); err != nil {
		return fmt.Errorf("label count name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &lc.Count); err != nil {
		return fmt.Errorf("label count value: %w", err)
	}
	return nil
}

// Stats is the derived snapshot. It is never authoritative: regenerate it
// from the records whenever in doubt.
type Stats struct {
	TotalBookmarks int            `json:"total_bookmarks"`
	LastUpdated    *time.Time     `json:"last_updated"`
	DateCounts     map[string]int `json:"date_counts"`
	TopTags        []LabelCount   `json:"top_tags"`
	TopDomains     []LabelCount   `json:"top_domains"`
}

// EmptyStats is served when nothing has been persisted yet.
func EmptyStats() Stats {
	return Stats{
		DateCounts: map[string]int{},
		TopTags:    []LabelCount{},
		TopDomains: []LabelCount{},
	}
}

// DayCount is one entry of Summary.RecentDays.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalBookmarks int        `json:"total_bookmarks"`
	TodayBookmarks int        `json:"today_bookmarks"`
	RecentDays     []DayCount `json:"recent_days"`
	TotalTags      int        `json:"total_tags"`
	TotalDomains   int        `json:"total_domains"`
	LastUpdated    *time.Time `json:"last_updated"`
}

// counter keeps first-seen order so ties sort deterministically.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top(n int) []LabelCount {
	out := make([]LabelCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, LabelCount{Name: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Aggregate scans all records once. Empty dates, tags and domains are not
// counted anywhere.
func Aggregate(all []*Bookmark, now time.Time) Stats {
	dates := newCounter()
	tags := newCounter()
	domains := newCounter()

	for _, b := range all {
		dates.add(b.CreatedDate)
		for _, t := range b.Tags {
			tags.add(t)
		}
		domains.add(b.Domain)
	}

	s := Stats{
		TotalBookmarks: len(all),
		LastUpdated:    &now,
		DateCounts:     dates.counts,
		TopTags:        tags.top(TopN),
		TopDomains:     domains.top(TopN),
	}
	return s
}

// Summarize derives the dashboard numbers from a snapshot. today decides
// which calendar day counts as "today"; its location is respected.
// RecentDays starts at today and walks back.
func Summarize(s Stats, today time.Time) Summary {
	recent := make([]DayCount, 0, RecentDays)
	for i := 0; i < RecentDays; i++ {
		day := today.AddDate(0, 0, -i).Format(DateLayout)
		recent = append(recent, DayCount{Date: day, Count: s.DateCounts[day]})
	}

	return Summary{
		TotalBookmarks: s.TotalBookmarks,
		TodayBookmarks: s.DateCounts[today.Format(DateLayout)],
		RecentDays:     recent,
		TotalTags:      len(s.TopTags),
		TotalDomains:   len(s.TopDomains),
		LastUpdated:    s.LastUpdated,
	}
}
