package client

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TypeFilter selects submissions by kind.
type TypeFilter int

const (
	TypeAll TypeFilter = iota
	TypeReview
	TypeSuggestion
)

// StatusFilter selects submissions by moderation state.
type StatusFilter int

const (
	StatusAny StatusFilter = iota
	StatusApproved
	StatusPending
)

// Stats are the headline numbers shown on the dashboard. AvgRating is nil
// for an empty set; it is never NaN.
type Stats struct {
	Total        int
	AvgRating    *float64
	ApprovalRate int
	NewThisWeek  int
}

// Bucket is one local calendar day in the analytics trend.
type Bucket struct {
	Day   time.Time
	Count int
}

// ParseCreatedAt normalizes the backend's assorted timestamp formats to an
// absolute instant. The chain, in order: pure number as epoch seconds (<=10
// characters) or milliseconds, direct RFC 3339 parsing, the first space
// replaced by 'T' (SQL-style timestamps), and finally the same with a
// trailing UTC marker. Items whose raw value survives none of these are
// excluded from every timestamp-dependent computation.
func ParseCreatedAt(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if len(value) <= 10 {
			return time.Unix(n, 0), true
		}
		return time.UnixMilli(n), true
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}

	withT := strings.Replace(value, " ", "T", 1)
	if t, err := time.Parse(time.RFC3339Nano, withT); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, withT, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, withT+"Z"); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// FilterItems applies the search query and both filters to a snapshot. The
// query matches case-insensitively against name, text and contact; an empty
// query matches everything.
func FilterItems(items []Feedback, query string, typeFilter TypeFilter, statusFilter StatusFilter) []Feedback {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Feedback, 0, len(items))
	for _, item := range items {
		if !matchesType(item, typeFilter) || !matchesStatus(item, statusFilter) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.Text), q) &&
			!strings.Contains(strings.ToLower(item.Contact), q) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesType(item Feedback, f TypeFilter) bool {
	switch f {
	case TypeAll:
		return true
	case TypeReview:
		return item.Type == "review"
	case TypeSuggestion:
		return item.Type == "suggestion"
	}
	return false
}

func matchesStatus(item Feedback, f StatusFilter) bool {
	switch f {
	case StatusAny:
		return true
	case StatusApproved:
		return item.IsApproved
	case StatusPending:
		return !item.IsApproved
	}
	return false
}

// ComputeStats derives the dashboard numbers. Total, average rating and
// approval rate describe the filtered set; NewThisWeek deliberately counts
// over the whole unfiltered set, so "new this week" reads the same no matter
// which filters are active.
func ComputeStats(filtered, all []Feedback, now time.Time) Stats {
	stats := Stats{Total: len(filtered)}

	if len(filtered) > 0 {
		sum := 0
		approved := 0
		for _, item := range filtered {
			sum += item.Rating
			if item.IsApproved {
				approved++
			}
		}
		avg := float64(sum) / float64(len(filtered))
		stats.AvgRating = &avg
		stats.ApprovalRate = int(math.Round(100 * float64(approved) / float64(len(filtered))))
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, item := range all {
		if t, ok := ParseCreatedAt(item.CreatedAt); ok && !t.Before(weekAgo) {
			stats.NewThisWeek++
		}
	}

	return stats
}

// DailyBuckets counts items per local calendar day over a window of the
// given length ending today, oldest day first. Items outside the window or
// with unparseable timestamps are excluded, never clamped into an edge
// bucket.
func DailyBuckets(items []Feedback, days int, now time.Time) []Bucket {
	today := startOfDay(now)

	buckets := make([]Bucket, days)
	index := make(map[time.Time]int, days)
	for i := range buckets {
		day := today.AddDate(0, 0, -(days - 1 - i))
		buckets[i].Day = day
		index[day] = i
	}

	for _, item := range items {
		t, ok := ParseCreatedAt(item.CreatedAt)
		if !ok {
			continue
		}
		day := startOfDay(t.In(now.Location()))
		if i, inWindow := index[day]; inWindow {
			buckets[i].Count++
		}
	}

	return buckets
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// LowRatingItems returns the five lowest-rated items with rating 6 or below,
// ascending by rating. Order among equal ratings follows the input.
func LowRatingItems(items []Feedback) []Feedback {
	low := make([]Feedback, 0)
	for _, item := range items {
		if item.Rating <= 6 {
			low = append(low, item)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Rating < low[j].Rating })
	if len(low) > 5 {
		low = low[:5]
	}
	return low
}

var csvHeader = []string{"id", "name", "type", "rating", "date", "contact", "text", "approved"}

// ExportCSV writes the items in export format. Fields containing a comma,
// quote or newline are wrapped in double quotes with inner quotes doubled.
func ExportCSV(w io.Writer, items []Feedback) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, item := range items {
		record := []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.Name,
			item.Type,
			strconv.Itoa(item.Rating),
			item.CreatedAt,
			item.Contact,
			item.Text,
			strconv.FormatBool(item.IsApproved),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename names an export after the day it was taken.
func CSVFilename(now time.Time) string {
	return "feedback-" + now.Format("2006-01-02") + ".csv"
}
