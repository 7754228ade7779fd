// Package stats aggregates request counts for the statistics dashboard.
package stats

import (
	"math"
	"sort"
	"strings"
)

// Entry is one ranked name with its share of the input documents.
type Entry struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Rank counts names, skipping blanks, and orders them by count descending.
// Ties keep first-seen order. Percentages are relative to len(names).
func Rank(names []string) []Entry {
	total := len(names)
	index := make(map[string]int)
	var out []Entry
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if i, ok := index[n]; ok {
			out[i].Count++
			continue
		}
		index[n] = len(out)
		out = append(out, Entry{Name: n, Count: 1})
	}
	for i := range out {
		out[i].Percentage = percent(out[i].Count, total)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// TopN returns the first n entries.
func TopN(entries []Entry, n int) []Entry {
	if len(entries) > n {
		entries = entries[:n]
	}
	return append([]Entry(nil), entries...)
}

// BottomN returns the last n entries, least frequent first.
func BottomN(entries []Entry, n int) []Entry {
	start := len(entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Entry, 0, len(entries)-start)
	for i := len(entries) - 1; i >= start; i-- {
		out = append(out, entries[i])
	}
	return out
}

func roundShare(total int, share float64) int {
	return int(math.Round(float64(total) * share))
}
