package enrich

import (
	"context"
	"sort"
	"strings"
	"sync"

	"newshub/internal/article"
)

// Topic is one trending subject extracted from recent batches.
type Topic struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Enricher annotates a batch with analysis metadata. Implementations must
// return the batch in the same order and length, or an error; partial
// annotation is not allowed.
type Enricher interface {
	Enrich(ctx context.Context, articles []article.Article) ([]article.Article, error)
	TrendingTopics() []Topic
}

// Identity is the enricher used when no AI backend is configured. It
// passes batches through untouched and derives trending topics from
// headline word frequency.
type Identity struct {
	mu     sync.Mutex
	topics []Topic
}

func NewIdentity() *Identity {
	return &Identity{}
}

func (e *Identity) Enrich(_ context.Context, articles []article.Article) ([]article.Article, error) {
	e.mu.Lock()
	e.topics = headlineTopics(articles, 5)
	e.mu.Unlock()
	return articles, nil
}

func (e *Identity) TrendingTopics() []Topic {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Topic, len(e.topics))
	copy(out, e.topics)
	return out
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "after": {},
	"over": {}, "into": {}, "amid": {}, "that": {}, "this": {}, "will": {},
	"has": {}, "have": {}, "are": {}, "was": {}, "its": {}, "his": {},
	"her": {}, "new": {}, "says": {}, "said": {}, "not": {}, "who": {},
	"how": {}, "why": {}, "what": {}, "more": {}, "most": {}, "than": {},
}

// headlineTopics counts capitalizable words across titles and keeps the
// n most frequent. Ties break on first appearance so output is stable.
func headlineTopics(articles []article.Article, n int) []Topic {
	counts := make(map[string]int)
	var order []string

	for _, a := range articles {
		for _, word := range strings.Fields(a.Title) {
			word = strings.ToLower(strings.Trim(word, ".,!?:;\"'()[]"))
			if len([]rune(word)) < 4 {
				continue
			}
			if _, skip := stopwords[word]; skip {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	topics := make([]Topic, 0, len(order))
	for _, word := range order {
		if counts[word] < 2 {
			continue
		}
		topics = append(topics, Topic{Topic: word, Count: counts[word]})
	}
	return topics
}
