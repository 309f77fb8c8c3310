package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCounts(t *testing.T) {
	day1 := base
	day2 := base.AddDate(0, 0, 1)

	all := []*Bookmark{
		NewBookmark("1", BookmarkInput{URL: "https://go.dev/a", Title: "a", Tags: []string{"go", "docs"}}, "", day1),
		NewBookmark("2", BookmarkInput{URL: "https://go.dev/b", Title: "b", Tags: []string{"go"}}, "", day1),
		NewBookmark("3", BookmarkInput{URL: "https://www.rust-lang.org", Title: "c", Tags: []string{"rust", ""}}, "", day2),
		NewBookmark("4", BookmarkInput{URL: "relative/path", Title: "d"}, "", day2),
	}

	s := Aggregate(all, day2)

	assert.Equal(t, 4, s.TotalBookmarks)
	require.NotNil(t, s.LastUpdated)
	assert.Equal(t, map[string]int{"2024-03-10": 2, "2024-03-11": 2}, s.DateCounts)
	assert.Equal(t, []LabelCount{{"go", 2}, {"docs", 1}, {"rust", 1}}, s.TopTags)
	assert.Equal(t, []LabelCount{{"go.dev", 2}, {"rust-lang.org", 1}}, s.TopDomains)

	sum := 0
	for _, c := range s.DateCounts {
		sum += c
	}
	assert.Equal(t, s.TotalBookmarks, sum)
}

func TestAggregateDropsEmptyDate(t *testing.T) {
	b := NewBookmark("1", BookmarkInput{URL: "https://a.com", Title: "a"}, "", base)
	b.CreatedDate = ""

	s := Aggregate([]*Bookmark{b}, base)

	assert.Equal(t, 1, s.TotalBookmarks)
	assert.Empty(t, s.DateCounts)
	_, hasUnknown := s.DateCounts["unknown"]
	assert.False(t, hasUnknown)
}

func TestAggregateTopListsTruncatedAndStable(t *testing.T) {
	all := make([]*Bookmark, 0, 30)
	// 12 tags seen once each, in order t00..t11, then t05 gets a second hit.
	for i := 0; i < 12; i++ {
		tag := fmt.Sprintf("t%02d", i)
		all = append(all, NewBookmark(tag, BookmarkInput{URL: "https://x.com", Title: tag, Tags: []string{tag}}, "", base))
	}
	all = append(all, NewBookmark("extra", BookmarkInput{URL: "https://x.com", Title: "e", Tags: []string{"t05"}}, "", base))

	s := Aggregate(all, base)

	require.Len(t, s.TopTags, TopN)
	assert.Equal(t, LabelCount{"t05", 2}, s.TopTags[0])
	want := []string{"t05", "t00", "t01", "t02", "t03", "t04", "t06", "t07", "t08", "t09"}
	got := make([]string, 0, len(s.TopTags))
	for i, lc := range s.TopTags {
		got = append(got, lc.Name)
		if i > 0 {
			assert.LessOrEqual(t, lc.Count, s.TopTags[i-1].Count)
		}
	}
	assert.Equal(t, want, got)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, base)

	assert.Equal(t, 0, s.TotalBookmarks)
	assert.NotNil(t, s.DateCounts)
	assert.NotNil(t, s.TopTags)
	assert.NotNil(t, s.TopDomains)
}

func TestEmptyStats(t *testing.T) {
	s := EmptyStats()
	assert.Equal(t, 0, s.TotalBookmarks)
	assert.Nil(t, s.LastUpdated)
	assert.Empty(t, s.DateCounts)
}

func TestSummarize(t *testing.T) {
	today := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := Stats{
		TotalBookmarks: 6,
		DateCounts: map[string]int{
			"2024-03-01": 2,
			"2024-02-28": 3,
			"2024-02-20": 1,
		},
		TopTags:    []LabelCount{{"a", 1}, {"b", 1}},
		TopDomains: []LabelCount{{"x", 6}},
	}

	sum := Summarize(s, today)

	assert.Equal(t, 6, sum.TotalBookmarks)
	assert.Equal(t, 2, sum.TodayBookmarks)
	assert.Equal(t, 2, sum.TotalTags)
	assert.Equal(t, 1, sum.TotalDomains)
	assert.Equal(t, []DayCount{
		{"2024-03-01", 2},
		{"2024-02-29", 0},
		{"2024-02-28", 3},
		{"2024-02-27", 0},
		{"2024-02-26", 0},
		{"2024-02-25", 0},
		{"2024-02-24", 0},
	}, sum.RecentDays)
}

func TestSummarizeTodayFollowsLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	// 23:30 UTC on the 9th is already the 10th in tokyo
	at := time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)
	s := Stats{DateCounts: map[string]int{"2024-05-09": 4, "2024-05-10": 1}}

	assert.Equal(t, 4, Summarize(s, at).TodayBookmarks)
	assert.Equal(t, 1, Summarize(s, at.In(tokyo)).TodayBookmarks)
}

func TestLabelCountWireShape(t *testing.T) {
	s := EmptyStats()
	s.TopTags = []LabelCount{{"go", 3}, {"rust", 1}}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_tags":[["go",3],["rust",1]]`)
	assert.Contains(t, string(data), `"top_domains":[]`)

	var back Stats
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.TopTags, back.TopTags)

	var lc LabelCount
	assert.Error(t, json.Unmarshal([]byte(`["go"]`), &lc))
	assert.Error(t, json.Unmarshal([]byte(`{"name":"go","count":1}`), &lc))
}

func TestSummarizeZeroSnapshot(t *testing.T) {
	sum := Summarize(EmptyStats(), base)

	assert.Equal(t, 0, sum.TodayBookmarks)
	assert.Len(t, sum.RecentDays, RecentDays)
}
