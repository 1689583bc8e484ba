// Package provider implements the external news source clients and the pure
// normalizers that map each provider's payload into the canonical Article
// shape. Providers do not retry, cache or rank; the cascade owns that.
package provider

import (
	"context"
	"net/http"
	"time"

	"newshub/internal/article"
)

// Provider is one external news source. Fetch returns normalized articles for
// a category; an empty result without error means the provider responded but
// had nothing usable.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, category string) ([]article.Article, error)
}

// Searcher is implemented by providers that support free-text queries, used
// by the multi-query merge path.
type Searcher interface {
	Search(ctx context.Context, query, language string) ([]article.Article, error)
}

// Categories enumerates the category keys the API accepts. Unknown categories
// map to the default query.
var Categories = []string{
	"general",
	"business",
	"technology",
	"entertainment",
	"sports",
	"health",
	"science",
	"nation",
	"world",
}

// KnownCategory reports whether category is one of the enumerated keys.
func KnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ResolveCategory maps any requested category onto an enumerated key.
func ResolveCategory(category string) string {
	if KnownCategory(category) {
		return category
	}
	return "general"
}

// searchQueries expands a category key into the multi-term query handed to
// search-capable providers. Terms mix English and Hindi so the bilingual
// fan-out finds regional coverage.
var searchQueries = map[string]string{
	"general":       `India news OR "breaking news"`,
	"business":      `India business OR "stock market" OR economy`,
	"technology":    `India technology OR startup OR "tech news"`,
	"entertainment": `Bollywood OR entertainment OR "web series"`,
	"sports":        `India sports OR cricket OR "Indian team"`,
	"health":        `India health OR "health ministry" OR hospital`,
	"science":       `India science OR ISRO OR research`,
	"nation":        `India news OR भारत`,
	"world":         `world news OR international`,
}

const defaultSearchQuery = "India news"

// SearchQuery returns the query expansion for a category key. Unknown
// categories fall back to the default query.
func SearchQuery(category string) string {
	if q, ok := searchQueries[category]; ok {
		return q
	}
	return defaultSearchQuery
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
