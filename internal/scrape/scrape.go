package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"newshub/internal/article"
	"newshub/internal/logger"
)

const (
	requestTimeout = 15 * time.Second
	minParagraphs  = 3
	maxConcurrent  = 4
)

// Extractor pulls readable article text out of publisher pages. It is
// used to hydrate feed items that carry only a headline and link.
type Extractor struct {
	client *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{client: &http.Client{Timeout: requestTimeout}}
}

// Page is what Extract recovers from one URL.
type Page struct {
	Content  string
	ImageURL string
}

// Extract fetches a page and recovers its body text and lead image.
func (e *Extractor) Extract(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newshub/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %v", err)
	}

	content := extractContent(doc)
	if content == "" {
		return nil, fmt.Errorf("can't get content")
	}

	return &Page{
		Content:  content,
		ImageURL: extractLeadImage(doc),
	}, nil
}

// HydrateAll fills in placeholder content for the given articles with
// bounded concurrency. Articles whose pages cannot be read keep their
// placeholders; hydration never fails the batch.
func (e *Extractor) HydrateAll(ctx context.Context, articles []article.Article) []article.Article {
	out := make([]article.Article, len(articles))
	copy(out, articles)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i := range out {
		if out[i].Content != article.PlaceholderContent || out[i].URL == "" || out[i].URL == "#" {
			continue
		}
		i := i
		g.Go(func() error {
			page, err := e.Extract(ctx, out[i].URL)
			if err != nil {
				logger.Debug("content hydration skipped", "url", out[i].URL, "error", err)
				return nil
			}
			out[i].Content = page.Content
			if page.ImageURL != "" && out[i].ImageURL == article.DefaultImage(out[i].Category) {
				out[i].ImageURL = page.ImageURL
			}
			return nil
		})
	}

	g.Wait()
	return out
}

// extractContent tries common body selectors until one yields enough
// paragraphs to look like real article text.
func extractContent(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article-body p",
		".article-content p",
		".story-body p",
		".entry-content p",
		".post-content p",
		".content p",
		"main p",
	}

	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= minParagraphs {
			return cleanContent(strings.Join(paragraphs, "\n\n"))
		}
	}
	return ""
}

func extractLeadImage(doc *goquery.Document) string {
	if u, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		return strings.TrimSpace(u)
	}
	if u, ok := doc.Find(`meta[name="twitter:image"]`).Attr("content"); ok {
		return strings.TrimSpace(u)
	}
	return ""
}

// cleanContent drops boilerplate lines that survive selector matching.
func cleanContent(content string) string {
	junk := []string{
		"cookie", "advertisement", "subscribe", "newsletter",
		"sign up", "read more:", "also read",
	}

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, line)
			continue
		}
		lower := strings.ToLower(trimmed)
		skip := false
		for _, marker := range junk {
			if strings.HasPrefix(lower, marker) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
