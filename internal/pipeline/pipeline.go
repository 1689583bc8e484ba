package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newshub/internal/article"
	"newshub/internal/cache"
	"newshub/internal/enrich"
	"newshub/internal/fetch"
	"newshub/internal/logger"
	"newshub/internal/metrics"
	"newshub/internal/provider"
)

// Config controls pipeline behavior.
type Config struct {
	CacheTTL       time.Duration
	HydrateContent bool
}

func DefaultConfig() Config {
	return Config{
		CacheTTL:       15 * time.Minute,
		HydrateContent: false,
	}
}

// Hydrator fills in article bodies that only carry placeholders.
type Hydrator interface {
	HydrateAll(ctx context.Context, articles []article.Article) []article.Article
}

// Result is one pipeline run: a cleaned, possibly enriched batch plus
// where it came from.
type Result struct {
	Articles     []article.Article
	Source       string
	FallbackMode bool
	AIProcessed  bool
	Trending     []enrich.Topic
}

// Pipeline is the fetch, merge, enrich, cache chain behind the news
// endpoints. Enrichment failures degrade the batch, never drop it; a
// fully exhausted provider chain falls back to cached then demo content.
type Pipeline struct {
	cascade  *fetch.Cascade
	enricher enrich.Enricher
	cache    *cache.Cache
	hydrator Hydrator
	cfg      Config

	now func() time.Time

	mu  sync.Mutex
	seq map[string]uint64
}

func New(cascade *fetch.Cascade, enricher enrich.Enricher, c *cache.Cache, hydrator Hydrator, cfg Config) *Pipeline {
	return &Pipeline{
		cascade:  cascade,
		enricher: enricher,
		cache:    c,
		hydrator: hydrator,
		cfg:      cfg,
		now:      time.Now,
		seq:      make(map[string]uint64),
	}
}

// Fetch produces the current batch for one category. It never returns an
// error to the caller: when every provider fails it serves the cached
// batch if one exists, and demo content otherwise.
func (p *Pipeline) Fetch(ctx context.Context, category string) Result {
	category = provider.ResolveCategory(category)
	seq := p.begin(category)

	res, err := p.cascade.Fetch(ctx, category)
	if err != nil {
		if !errors.Is(err, fetch.ErrAllSourcesExhausted) {
			logger.Error("unexpected cascade error", "category", category, "error", err)
		}
		return p.fallback(category)
	}

	raw := len(res.Articles)
	articles := article.Merge(res.Articles)
	if dropped := raw - len(articles); dropped > 0 {
		metrics.Global.AddDuplicatesFiltered(dropped)
	}

	if p.cfg.HydrateContent && p.hydrator != nil {
		articles = p.hydrator.HydrateAll(ctx, articles)
	}

	aiProcessed := false
	enriched, err := p.enricher.Enrich(ctx, articles)
	if err != nil {
		metrics.Global.IncrementEnrichmentFailures()
		logger.Warn("enrichment failed, serving plain batch", "category", category, "error", err)
	} else {
		articles = enriched
		aiProcessed = true
	}

	if !p.finish(category, seq) {
		metrics.Global.IncrementStaleDiscarded()
		logger.Debug("discarding stale fetch result", "category", category)
	} else {
		p.cache.Set(category, articles, res.Source, p.cfg.CacheTTL)
	}

	metrics.Global.SetLastRun()
	return Result{
		Articles:     articles,
		Source:       res.Source,
		FallbackMode: res.UsedFallback,
		AIProcessed:  aiProcessed,
		Trending:     p.enricher.TrendingTopics(),
	}
}

// Cached returns the cached batch for a category without fetching.
func (p *Pipeline) Cached(category string) (Result, bool) {
	category = provider.ResolveCategory(category)
	articles, source, ok := p.cache.Get(category)
	if !ok {
		return Result{}, false
	}
	metrics.Global.IncrementCacheHits()
	return Result{
		Articles: articles,
		Source:   source,
		Trending: p.enricher.TrendingTopics(),
	}, true
}

// Trending reports the topics of the most recently enriched batch.
func (p *Pipeline) Trending() []enrich.Topic {
	return p.enricher.TrendingTopics()
}

// QuotaStats reports per-provider request counts from the cascade's limiter.
func (p *Pipeline) QuotaStats() map[string]int {
	return p.cascade.QuotaStats()
}

// Search fans the query out to every search-capable provider in both
// English and Hindi, then merges the batches.
func (p *Pipeline) Search(ctx context.Context, query string) Result {
	var searchers []provider.Searcher
	for _, pr := range p.cascade.Providers() {
		if s, ok := pr.(provider.Searcher); ok {
			searchers = append(searchers, s)
		}
	}
	if len(searchers) == 0 {
		return Result{Articles: []article.Article{}}
	}

	languages := []string{"en", "hi"}
	batches := make([][]article.Article, len(searchers)*len(languages))

	g, gctx := errgroup.WithContext(ctx)
	for si, s := range searchers {
		for li, lang := range languages {
			idx := si*len(languages) + li
			s, lang := s, lang
			g.Go(func() error {
				batch, err := s.Search(gctx, query, lang)
				if err != nil {
					logger.Debug("search provider failed", "query", query, "language", lang, "error", err)
					return nil
				}
				batches[idx] = batch
				return nil
			})
		}
	}
	g.Wait()

	articles := article.Merge(batches...)

	aiProcessed := false
	if enriched, err := p.enricher.Enrich(ctx, articles); err != nil {
		metrics.Global.IncrementEnrichmentFailures()
		logger.Warn("search enrichment failed", "query", query, "error", err)
	} else {
		articles = enriched
		aiProcessed = true
	}

	return Result{
		Articles:    articles,
		Source:      "search",
		AIProcessed: aiProcessed,
		Trending:    p.enricher.TrendingTopics(),
	}
}

// fallback serves the cached batch when one exists, demo content
// otherwise. Demo batches are marked FallbackMode.
func (p *Pipeline) fallback(category string) Result {
	if articles, source, ok := p.cache.Get(category); ok {
		metrics.Global.IncrementCacheHits()
		logger.Info("serving cached batch after exhaustion", "category", category)
		return Result{
			Articles:     articles,
			Source:       source,
			FallbackMode: true,
			Trending:     p.enricher.TrendingTopics(),
		}
	}

	metrics.Global.IncrementFallbacksServed()
	logger.Warn("serving demo content, all sources exhausted", "category", category)
	return Result{
		Articles:     article.Demo(p.now()),
		Source:       "demo",
		FallbackMode: true,
	}
}

func (p *Pipeline) begin(category string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq[category]++
	return p.seq[category]
}

// finish reports whether seq is still the newest request for category.
func (p *Pipeline) finish(category string, seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq[category] == seq
}
