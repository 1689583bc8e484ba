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

// NewsAPI queries newsapi.org. Removed stories come back with the literal
// title "[Removed]"; those are dropped during normalization.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsAPI(apiKey string) *NewsAPI {
	return &NewsAPI{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org",
		client:  defaultHTTPClient(),
	}
}

func (p *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Author      string `json:"author"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type newsAPIResponse struct {
	Status   string        `json:"status"`
	Articles []newsAPIItem `json:"articles"`
}

func (p *NewsAPI) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	category = ResolveCategory(category)

	q := url.Values{}
	q.Set("category", category)
	q.Set("language", "en")
	q.Set("apiKey", p.apiKey)

	return p.get(ctx, "/v2/top-headlines?"+q.Encode(), category)
}

// Search implements Searcher via the everything endpoint.
func (p *NewsAPI) Search(ctx context.Context, query, language string) ([]article.Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("language", language)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "30")
	q.Set("apiKey", p.apiKey)

	return p.get(ctx, "/v2/everything?"+q.Encode(), "")
}

func (p *NewsAPI) get(ctx context.Context, path, category string) ([]article.Article, error) {
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
		return nil, fmt.Errorf("newsapi: unexpected status %d", resp.StatusCode)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi: malformed payload: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %q", payload.Status)
	}

	return normalizeNewsAPI(payload.Articles, category, time.Now()), nil
}

func normalizeNewsAPI(items []newsAPIItem, category string, now time.Time) []article.Article {
	out := make([]article.Article, 0, len(items))
	for _, item := range items {
		if item.Title == "[Removed]" || item.Description == "[Removed]" {
			continue
		}

		source := item.Source.Name
		if source == "" {
			source = "NewsAPI"
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content == "" {
			content = article.PlaceholderContent
		}

		image := item.URLToImage
		if image == "" {
			image = article.DefaultImage(category)
		}

		author := item.Author
		if author == "" {
			author = "News Desk"
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
			Author:      author,
			Category:    category,
		})
	}
	return out
}
