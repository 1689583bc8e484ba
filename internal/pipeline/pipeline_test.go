package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/article"
	"newshub/internal/cache"
	"newshub/internal/enrich"
	"newshub/internal/fetch"
	"newshub/internal/provider"
	"newshub/internal/retry"
)

type stubProvider struct {
	name     string
	articles []article.Article
	err      error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	return s.articles, s.err
}

type failingEnricher struct{}

func (failingEnricher) Enrich(ctx context.Context, a []article.Article) ([]article.Article, error) {
	return nil, errors.New("annotator unavailable")
}

func (failingEnricher) TrendingTopics() []enrich.Topic { return nil }

func batch(titles ...string) []article.Article {
	out := make([]article.Article, len(titles))
	for i, title := range titles {
		out[i] = article.Article{
			ID:          article.MakeID(title, "Test Wire"),
			Title:       title,
			Source:      "Test Wire",
			PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func newPipeline(enricher enrich.Enricher, providers ...provider.Provider) *Pipeline {
	cascade := fetch.NewCascade(providers, time.Second, retry.Config{MaxAttempts: 1}, nil)
	return New(cascade, enricher, cache.New(), nil, DefaultConfig())
}

func TestFetchServesMergedBatch(t *testing.T) {
	p := newPipeline(enrich.NewIdentity(), &stubProvider{
		name: "Wire",
		articles: batch(
			"Delhi Metro announces ten new stations on the extended corridor today",
			"Delhi Metro announces ten new stations on the extended corridor today!!",
			"Parliament passes long-pending data protection bill",
		),
	})

	res := p.Fetch(context.Background(), "general")

	assert.Equal(t, "Wire", res.Source)
	assert.True(t, res.AIProcessed)
	assert.False(t, res.FallbackMode)
	// Near-duplicate titles collapse to the first occurrence.
	require.Len(t, res.Articles, 2)
}

func TestFetchEnrichmentFailureDegrades(t *testing.T) {
	p := newPipeline(failingEnricher{}, &stubProvider{
		name:     "Wire",
		articles: batch("Parliament passes long-pending data protection bill"),
	})

	res := p.Fetch(context.Background(), "general")

	assert.False(t, res.AIProcessed)
	require.Len(t, res.Articles, 1)
	assert.Nil(t, res.Articles[0].Enrichment)
}

func TestFetchExhaustedServesDemo(t *testing.T) {
	p := newPipeline(enrich.NewIdentity(), &stubProvider{name: "Wire", err: errors.New("down")})

	res := p.Fetch(context.Background(), "general")

	assert.True(t, res.FallbackMode)
	assert.Equal(t, "demo", res.Source)
	assert.NotEmpty(t, res.Articles)
}

func TestFetchExhaustedPrefersCachedBatch(t *testing.T) {
	good := &stubProvider{name: "Wire", articles: batch("Parliament passes long-pending data protection bill")}
	p := newPipeline(enrich.NewIdentity(), good)

	first := p.Fetch(context.Background(), "general")
	require.False(t, first.FallbackMode)

	// Provider goes dark; the cached batch is served instead of demo data.
	good.err = errors.New("down")
	second := p.Fetch(context.Background(), "general")

	assert.True(t, second.FallbackMode)
	assert.Equal(t, "Wire", second.Source)
	assert.Equal(t, first.Articles, second.Articles)
}

func TestCachedMissesBeforeFirstFetch(t *testing.T) {
	p := newPipeline(enrich.NewIdentity(), &stubProvider{name: "Wire", articles: batch("Parliament passes long-pending data protection bill")})

	_, ok := p.Cached("general")
	assert.False(t, ok)

	p.Fetch(context.Background(), "general")

	res, ok := p.Cached("general")
	require.True(t, ok)
	assert.Equal(t, "Wire", res.Source)
}

func TestTrendingReflectsLastEnrichedBatch(t *testing.T) {
	p := newPipeline(enrich.NewIdentity(), &stubProvider{
		name: "Wire",
		articles: batch(
			"Metro services resume across the capital after strike",
			"Metro ridership touches a record high this week",
		),
	})

	assert.Empty(t, p.Trending())

	p.Fetch(context.Background(), "general")

	topics := p.Trending()
	require.NotEmpty(t, topics)
	assert.Equal(t, "metro", topics[0].Topic)
	assert.Equal(t, 2, topics[0].Count)
}

func TestFetchUnknownCategoryResolvesToGeneral(t *testing.T) {
	p := newPipeline(enrich.NewIdentity(), &stubProvider{name: "Wire", articles: batch("Parliament passes long-pending data protection bill")})

	p.Fetch(context.Background(), "definitely-not-a-category")

	_, ok := p.Cached("general")
	assert.True(t, ok)
}
