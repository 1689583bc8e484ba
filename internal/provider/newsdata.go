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

// NewsData queries the NewsData.io API. First in the cascade because it
// returns real article images for most items.
type NewsData struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsData(apiKey string) *NewsData {
	return &NewsData{
		apiKey:  apiKey,
		baseURL: "https://newsdata.io",
		client:  defaultHTTPClient(),
	}
}

func (p *NewsData) Name() string { return "NewsData.io" }

// newsDataItem mirrors the relevant fields of a NewsData.io result.
type newsDataItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Link        string   `json:"link"`
	ImageURL    string   `json:"image_url"`
	PubDate     string   `json:"pubDate"`
	SourceID    string   `json:"source_id"`
	Creator     []string `json:"creator"`
}

type newsDataResponse struct {
	Status  string         `json:"status"`
	Results []newsDataItem `json:"results"`
}

func (p *NewsData) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	category = ResolveCategory(category)

	q := url.Values{}
	q.Set("apikey", p.apiKey)
	q.Set("country", "in")
	q.Set("language", "en")
	if category != "general" {
		q.Set("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/1/news?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsdata: unexpected status %d", resp.StatusCode)
	}

	var payload newsDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsdata: malformed payload: %w", err)
	}
	if payload.Status != "success" {
		return nil, fmt.Errorf("newsdata: status %q", payload.Status)
	}

	return normalizeNewsData(payload.Results, category, time.Now()), nil
}

// normalizeNewsData is the pure payload mapper; no network, order-preserving.
func normalizeNewsData(items []newsDataItem, category string, now time.Time) []article.Article {
	out := make([]article.Article, 0, len(items))
	for _, item := range items {
		source := item.SourceID
		if source == "" {
			source = "NewsData"
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}
		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content == "" {
			content = article.PlaceholderContent
		}

		image := item.ImageURL
		if image == "" {
			image = article.DefaultImage(category)
		}

		author := "News Desk"
		if len(item.Creator) > 0 && item.Creator[0] != "" {
			author = item.Creator[0]
		}

		out = append(out, article.Article{
			ID:          article.MakeID(item.Title, source),
			Title:       item.Title,
			Description: description,
			Content:     content,
			URL:         item.Link,
			ImageURL:    image,
			PublishedAt: article.ParseTime(item.PubDate, now),
			Source:      source,
			Author:      author,
			Category:    category,
		})
	}
	return out
}
