// Package types contains the ranking shapes shared by the service, API and CLI.
package types

import (
	"cmp"
	"slices"
)

// Entry is one competitor's place in a ranking.
type Entry struct {
	Rank       int     `json:"rank"`
	Competitor string  `json:"competitor"`
	Rating     float64 `json:"rating"`
}

// Ranking is the result of one estimation run.
type Ranking struct {
	RunID      string  `json:"run_id"`
	Season     int     `json:"season"`
	Weeks      []int   `json:"weeks,omitempty"`
	Kind       string  `json:"kind"`
	Games      int     `json:"games"`
	Iterations int     `json:"iterations"`
	Entries    []Entry `json:"entries"`
}

// Ratings returns the competitor to rating mapping.
func (r Ranking) Ratings() map[string]float64 {
	out := make(map[string]float64, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Competitor] = e.Rating
	}
	return out
}

// Find returns the entry for competitor.
func (r Ranking) Find(competitor string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Competitor == competitor {
			return e, true
		}
	}
	return Entry{}, false
}

// Sort orders entries by descending rating and assigns ranks starting at 1.
// Equal ratings keep their incoming order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
