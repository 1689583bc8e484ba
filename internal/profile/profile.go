// Package profile derives a behavioral UserProfile from reading history. The
// profile has no storage of its own: it is recomputed from the history on
// every mutation, so it can never go stale.
package profile

import "math"

// Entry is one recorded article view. Append-only, except readTimeSeconds
// which is backfilled after the view ends.
type Entry struct {
	ArticleID       string `json:"articleId"`
	Category        string `json:"category,omitempty"`
	Source          string `json:"source,omitempty"`
	Sentiment       string `json:"sentiment,omitempty"`
	TimestampMs     int64  `json:"timestampMs"`
	ReadTimeSeconds int    `json:"readTimeSeconds"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Profile summarizes observed reading behavior. PreferredSentiment is empty
// when no sentiment was ever observed.
type Profile struct {
	Interests             map[string]int  `json:"interests"`
	TopCategories         []CategoryCount `json:"topCategories"`
	TopSources            []SourceCount   `json:"topSources"`
	AvgReadingTimeSeconds int             `json:"avgReadingTimeSeconds"`
	PreferredSentiment    string          `json:"preferredSentiment,omitempty"`
	ActivityScore         int             `json:"activityScore"`
}

const (
	topCategoryCount = 3
	topSourceCount   = 5
)

// Build computes the profile for a history. Pure and deterministic: identical
// input always yields identical output, and empty history yields the zero
// profile. Input is bounded at 100 entries by the history store, so this is
// cheap enough to run after every mutation.
func Build(history []Entry) Profile {
	p := Profile{
		Interests:     map[string]int{},
		TopCategories: []CategoryCount{},
		TopSources:    []SourceCount{},
	}

	if len(history) == 0 {
		return p
	}

	// Encounter order breaks count ties below.
	var categoryOrder, sourceOrder, sentimentOrder []string
	sourceCounts := map[string]int{}
	sentimentCounts := map[string]int{}
	totalReadTime := 0

	for _, e := range history {
		if e.Category != "" {
			if _, seen := p.Interests[e.Category]; !seen {
				categoryOrder = append(categoryOrder, e.Category)
			}
			p.Interests[e.Category]++
		}
		if e.Source != "" {
			if _, seen := sourceCounts[e.Source]; !seen {
				sourceOrder = append(sourceOrder, e.Source)
			}
			sourceCounts[e.Source]++
		}
		if e.Sentiment != "" {
			if _, seen := sentimentCounts[e.Sentiment]; !seen {
				sentimentOrder = append(sentimentOrder, e.Sentiment)
			}
			sentimentCounts[e.Sentiment]++
		}
		totalReadTime += e.ReadTimeSeconds
	}

	for _, cat := range topKeys(categoryOrder, p.Interests, topCategoryCount) {
		p.TopCategories = append(p.TopCategories, CategoryCount{Category: cat, Count: p.Interests[cat]})
	}
	for _, src := range topKeys(sourceOrder, sourceCounts, topSourceCount) {
		p.TopSources = append(p.TopSources, SourceCount{Source: src, Count: sourceCounts[src]})
	}

	p.AvgReadingTimeSeconds = int(math.Round(float64(totalReadTime) / float64(len(history))))

	if top := topKeys(sentimentOrder, sentimentCounts, 1); len(top) > 0 {
		p.PreferredSentiment = top[0]
	}

	if score := len(history) * 2; score < 100 {
		p.ActivityScore = score
	} else {
		p.ActivityScore = 100
	}

	return p
}

// topKeys returns up to n keys sorted by count descending. keys is in
// encounter order, which a stable insertion sort preserves for equal counts.
func topKeys(keys []string, counts map[string]int, n int) []string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && counts[sorted[j]] > counts[sorted[j-1]]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
