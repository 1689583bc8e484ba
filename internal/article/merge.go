package article

import (
	"sort"
	"strings"
)

const (
	// signatureLength is how much of the title forms the near-duplicate key.
	signatureLength = 50
	// minTitleLength rejects stub and placeholder headlines.
	minTitleLength = 10

	removedMarker = "[Removed]"
)

// ValidTitle reports whether a headline is worth keeping. Stubs, removed
// placeholders and empty titles fail.
func ValidTitle(title string) bool {
	title = strings.TrimSpace(title)
	return title != "" && title != removedMarker && len([]rune(title)) >= minTitleLength
}

// Signature returns the truncated-title key used for near-duplicate detection.
func Signature(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) > signatureLength {
		runes = runes[:signatureLength]
	}
	return string(runes)
}

// Merge combines article batches into one deduplicated, freshness-sorted set.
// Arrival order is preserved while deduplicating: the first article seen for a
// title signature (or ID) wins, later ones are dropped. The result is sorted
// descending by publication time with a stable sort, so equal timestamps keep
// their prior relative order. This is the only ordering guarantee the API
// surface makes.
func Merge(batches ...[]Article) []Article {
	seenSig := make(map[string]struct{})
	seenID := make(map[string]struct{})
	var merged []Article

	for _, batch := range batches {
		for _, a := range batch {
			if !ValidTitle(a.Title) {
				continue
			}
			sig := Signature(a.Title)
			if _, dup := seenSig[sig]; dup {
				continue
			}
			if a.ID != "" {
				if _, dup := seenID[a.ID]; dup {
					continue
				}
				seenID[a.ID] = struct{}{}
			}
			seenSig[sig] = struct{}{}
			merged = append(merged, a)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	return merged
}
