package provider

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newshub/internal/article"
)

// googleNewsFeeds maps categories to Google News RSS topic feeds. These
// feeds need no API key, so this provider always sits last in the chain.
var googleNewsFeeds = map[string]string{
	"general":       "https://news.google.com/rss?hl=en-IN&gl=IN&ceid=IN:en",
	"business":      "https://news.google.com/rss/headlines/section/topic/BUSINESS?hl=en-IN&gl=IN&ceid=IN:en",
	"technology":    "https://news.google.com/rss/headlines/section/topic/TECHNOLOGY?hl=en-IN&gl=IN&ceid=IN:en",
	"entertainment": "https://news.google.com/rss/headlines/section/topic/ENTERTAINMENT?hl=en-IN&gl=IN&ceid=IN:en",
	"sports":        "https://news.google.com/rss/headlines/section/topic/SPORTS?hl=en-IN&gl=IN&ceid=IN:en",
	"health":        "https://news.google.com/rss/headlines/section/topic/HEALTH?hl=en-IN&gl=IN&ceid=IN:en",
	"science":       "https://news.google.com/rss/headlines/section/topic/SCIENCE?hl=en-IN&gl=IN&ceid=IN:en",
	"nation":        "https://news.google.com/rss/headlines/section/topic/NATION?hl=en-IN&gl=IN&ceid=IN:en",
	"world":         "https://news.google.com/rss/headlines/section/topic/WORLD?hl=en-IN&gl=IN&ceid=IN:en",
}

// GoogleNewsRSS parses the public Google News feeds. Items carry no body,
// only a headline and link, so downstream content hydration matters here.
type GoogleNewsRSS struct {
	feeds  map[string]string
	parser *gofeed.Parser
}

// NewGoogleNewsRSS builds the provider with the default feed map. Entries
// in overrides replace or extend the defaults.
func NewGoogleNewsRSS(overrides map[string]string) *GoogleNewsRSS {
	feeds := make(map[string]string, len(googleNewsFeeds))
	for category, feedURL := range googleNewsFeeds {
		feeds[category] = feedURL
	}
	for category, feedURL := range overrides {
		feeds[category] = feedURL
	}
	return &GoogleNewsRSS{feeds: feeds, parser: gofeed.NewParser()}
}

func (p *GoogleNewsRSS) Name() string { return "Google News RSS" }

func (p *GoogleNewsRSS) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	category = ResolveCategory(category)

	feedURL, ok := p.feeds[category]
	if !ok {
		feedURL = p.feeds["general"]
	}

	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	return normalizeFeed(feed, category, time.Now()), nil
}

func normalizeFeed(feed *gofeed.Feed, category string, now time.Time) []article.Article {
	out := make([]article.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := cleanFeedTitle(item.Title)

		source := "Google News"
		if item.Custom != nil && item.Custom["source"] != "" {
			source = item.Custom["source"]
		}

		description := strings.TrimSpace(item.Description)
		content := item.Content
		if content == "" {
			content = article.PlaceholderContent
		}

		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.Published != "" {
			published = article.ParseTime(item.Published, now)
		}

		image := feedImage(item)
		if image == "" {
			image = article.DefaultImage(category)
		}

		author := "News Desk"
		if len(item.Authors) > 0 && item.Authors[0].Name != "" {
			author = item.Authors[0].Name
		}

		out = append(out, article.Article{
			ID:          article.MakeID(title, source),
			Title:       title,
			Description: description,
			Content:     content,
			URL:         item.Link,
			ImageURL:    image,
			PublishedAt: published,
			Source:      source,
			Author:      author,
			Category:    category,
		})
	}
	return out
}

// cleanFeedTitle strips the " - Publisher" suffix Google News appends.
func cleanFeedTitle(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return strings.TrimSpace(title)
}

func feedImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	return ""
}
