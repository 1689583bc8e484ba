// Package article defines the canonical article shape every pipeline stage
// operates on, plus the merge/dedup logic that produces a consistent batch.
package article

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Sentiment is the annotator's tone classification for an article.
type Sentiment struct {
	Type       string `json:"type"`
	Confidence int    `json:"confidence,omitempty"`
}

// Impact describes how consequential the annotator considers the story.
type Impact struct {
	Level string `json:"level"`
	Score int    `json:"score,omitempty"`
}

// Entities holds named entities extracted from the article text.
type Entities struct {
	People        []string `json:"people,omitempty"`
	Places        []string `json:"places,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
}

// Enrichment is the opaque record attached by the external annotator after
// fetch. The pipeline never produces these values itself.
type Enrichment struct {
	Sentiment        *Sentiment `json:"sentiment,omitempty"`
	CredibilityScore int        `json:"credibilityScore,omitempty"`
	BiasLevel        string     `json:"biasLevel,omitempty"`
	Impact           *Impact    `json:"impact,omitempty"`
	Entities         *Entities  `json:"entities,omitempty"`
	Summary          string     `json:"summary,omitempty"`
}

// Article is the canonical shape produced by the normalizers. Every field a
// provider may omit has a deterministic fallback applied at the normalizer
// boundary, so downstream code never re-checks them.
type Article struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Content     string      `json:"content,omitempty"`
	URL         string      `json:"url,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	PublishedAt time.Time   `json:"publishedAt"`
	Source      string      `json:"source"`
	Author      string      `json:"author,omitempty"`
	Category    string      `json:"category,omitempty"`
	Enrichment  *Enrichment `json:"enrichment,omitempty"`
}

// PlaceholderContent substitutes for articles whose provider sent no body.
const PlaceholderContent = "Full content is not available. Read the complete story at the source."

// MakeID derives a stable identifier from title and source for providers that
// have no native ID. Same title + source always hashes to the same ID.
func MakeID(title, source string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(title))), " ")
	h := sha256.New()
	h.Write([]byte(normalized + "|" + strings.ToLower(source)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var categoryImages = map[string]string{
	"general":       "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=800&h=400&fit=crop&q=80",
	"business":      "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?w=800&h=400&fit=crop&q=80",
	"technology":    "https://images.unsplash.com/photo-1519389950473-47ba0277781c?w=800&h=400&fit=crop&q=80",
	"entertainment": "https://images.unsplash.com/photo-1514525253161-7a46d19cd819?w=800&h=400&fit=crop&q=80",
	"sports":        "https://images.unsplash.com/photo-1461896836934-ffe607ba8211?w=800&h=400&fit=crop&q=80",
	"health":        "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?w=800&h=400&fit=crop&q=80",
	"science":       "https://images.unsplash.com/photo-1532094349884-543bc11b234d?w=800&h=400&fit=crop&q=80",
	"nation":        "https://images.unsplash.com/photo-1529107386315-e1a2ed48a620?w=800&h=400&fit=crop&q=80",
	"world":         "https://images.unsplash.com/photo-1526778548025-fa2f459cd5c1?w=800&h=400&fit=crop&q=80",
}

// DefaultImage returns the deterministic placeholder image for a category.
// Unknown categories fall back to the general placeholder.
func DefaultImage(category string) string {
	if img, ok := categoryImages[category]; ok {
		return img
	}
	return categoryImages["general"]
}

// ParseTime parses common provider timestamp formats. Missing or unparseable
// dates resolve to now so sorting stays stable.
func ParseTime(value string, now time.Time) time.Time {
	if value == "" {
		return now
	}
	layouts := []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return now
}
