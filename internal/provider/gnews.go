package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"newshub/internal/article"
)

// GNews queries the gnews.io API. It reports images under "image" rather
// than "urlToImage"; the normalizer papers over that.
type GNews struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGNews(apiKey string) *GNews {
	return &GNews{
		apiKey:  apiKey,
		baseURL: "https://gnews.io",
		client:  defaultHTTPClient(),
	}
}

func (p *GNews) Name() string { return "GNews" }

type gnewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type gnewsResponse struct {
	Articles []gnewsItem `json:"articles"`
}

func (p *GNews) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	category = ResolveCategory(category)

	q := url.Values{}
	q.Set("category", category)
	q.Set("lang", "en")
	q.Set("max", "20")
	q.Set("apikey", p.apiKey)

	return p.get(ctx, "/api/v4/top-headlines?"+q.Encode(), category)
}

// Search implements Searcher for the multi-query merge path.
func (p *GNews) Search(ctx context.Context, query, language string) ([]article.Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("lang", language)
	q.Set("country", "in")
	q.Set("max", "20")
	q.Set("apikey", p.apiKey)

	return p.get(ctx, "/api/v4/search?"+q.Encode(), "")
}

func (p *GNews) get(ctx context.Context, path, category string) ([]article.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gnews: unexpected status %d", resp.StatusCode)
	}

	var payload gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("gnews: malformed payload: %w", err)
	}

	return normalizeGNews(payload.Articles, category, time.Now()), nil
}

func normalizeGNews(items []gnewsItem, category string, now time.Time) []article.Article {
	out := make([]article.Article, 0, len(items))
	for _, item := range items {
		source := item.Source.Name
		if source == "" {
			source = "GNews"
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content == "" {
			content = article.PlaceholderContent
		}

		image := item.Image
		if image == "" {
			image = article.DefaultImage(category)
		}

		out = append(out, article.Article{
			ID:          article.MakeID(item.Title, source),
			Title:       item.Title,
			Description: item.Description,
			Content:     content,
			URL:         item.URL,
			ImageURL:    image,
			PublishedAt: article.ParseTime(item.PublishedAt, now),
			Source:      source,
			Author:      "News Desk",
			Category:    category,
		})
	}
	return out
}
