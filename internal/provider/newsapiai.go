package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"newshub/internal/article"
)

// NewsAPIAI queries the newsapi.ai article search endpoint. Unlike the other
// providers it takes a JSON POST body.
type NewsAPIAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsAPIAI(apiKey string) *NewsAPIAI {
	return &NewsAPIAI{
		apiKey:  apiKey,
		baseURL: "https://newsapi.ai",
		client:  defaultHTTPClient(),
	}
}

func (p *NewsAPIAI) Name() string { return "NewsAPI.ai" }

type newsAPIAIRequest struct {
	APIKey         string `json:"apiKey"`
	Keyword        string `json:"keyword,omitempty"`
	Lang           string `json:"lang"`
	ArticlesCount  int    `json:"articlesCount"`
	ArticlesSortBy string `json:"articlesSortBy"`
}

type newsAPIAIItem struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	DateTime string `json:"dateTime"`
	Source   struct {
		Title string `json:"title"`
	} `json:"source"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

type newsAPIAIResponse struct {
	Articles struct {
		Results []newsAPIAIItem `json:"results"`
	} `json:"articles"`
}

func (p *NewsAPIAI) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	category = ResolveCategory(category)

	keyword := ""
	if category != "general" {
		keyword = category
	}
	body, err := json.Marshal(newsAPIAIRequest{
		APIKey:         p.apiKey,
		Keyword:        keyword,
		Lang:           "eng",
		ArticlesCount:  20,
		ArticlesSortBy: "date",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v1/article/getArticles", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi.ai: unexpected status %d", resp.StatusCode)
	}

	var payload newsAPIAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi.ai: malformed payload: %w", err)
	}

	return normalizeNewsAPIAI(payload.Articles.Results, category, time.Now()), nil
}

func normalizeNewsAPIAI(items []newsAPIAIItem, category string, now time.Time) []article.Article {
	out := make([]article.Article, 0, len(items))
	for _, item := range items {
		source := item.Source.Title
		if source == "" {
			source = "NewsAPI.ai"
		}

		description := item.Body
		if runes := []rune(description); len(runes) > 200 {
			description = string(runes[:200])
		}
		if description == "" {
			description = item.Title
		}
		content := item.Body
		if content == "" {
			content = article.PlaceholderContent
		}

		image := item.Image
		if image == "" {
			image = article.DefaultImage(category)
		}

		author := "News Desk"
		if len(item.Authors) > 0 && item.Authors[0].Name != "" {
			author = item.Authors[0].Name
		}

		out = append(out, article.Article{
			ID:          article.MakeID(item.Title, source),
			Title:       item.Title,
			Description: description,
			Content:     content,
			URL:         item.URL,
			ImageURL:    image,
			PublishedAt: article.ParseTime(item.DateTime, now),
			Source:      source,
			Author:      author,
			Category:    category,
		})
	}
	return out
}
