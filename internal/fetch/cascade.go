package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newshub/internal/article"
	"newshub/internal/logger"
	"newshub/internal/metrics"
	"newshub/internal/provider"
	"newshub/internal/ratelimit"
	"newshub/internal/retry"
)

// Result is the outcome of one cascade run. Source names the provider
// that served the batch; UsedFallback is set when at least one earlier
// provider failed or was skipped before this one served.
type Result struct {
	Articles     []article.Article
	Source       string
	UsedFallback bool
}

// Cascade tries providers strictly in order and stops at the first one
// that yields at least one usable article. A later provider is never
// contacted once an earlier one has succeeded.
type Cascade struct {
	providers []provider.Provider
	timeout   time.Duration
	retryCfg  retry.Config
	limiter   *ratelimit.Limiter
}

func NewCascade(providers []provider.Provider, timeout time.Duration, retryCfg retry.Config, limiter *ratelimit.Limiter) *Cascade {
	return &Cascade{
		providers: providers,
		timeout:   timeout,
		retryCfg:  retryCfg,
		limiter:   limiter,
	}
}

// Providers exposes the configured chain, in order.
func (c *Cascade) Providers() []provider.Provider {
	return c.providers
}

// QuotaStats reports request counts per provider for the current quota
// window. Nil when no limiter is configured.
func (c *Cascade) QuotaStats() map[string]int {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Stats()
}

// Fetch walks the provider chain for one category. Individual provider
// failures are logged and counted, never surfaced; the only error a
// caller sees is ErrAllSourcesExhausted.
func (c *Cascade) Fetch(ctx context.Context, category string) (Result, error) {
	start := time.Now()
	log := logger.With("category", category)

	for i, p := range c.providers {
		if c.limiter != nil && !c.limiter.Allow(p.Name()) {
			log.Warn("provider over daily quota, skipping", "provider", p.Name())
			continue
		}

		articles, err := c.attempt(ctx, p, category)
		if err != nil {
			metrics.Global.IncrementProviderFailures()
			log.Warn("provider failed, trying next",
				"provider", p.Name(),
				"error", err)
			continue
		}

		metrics.Global.AddArticlesFetched(len(articles))
		metrics.Global.RecordFetchTime(time.Since(start))
		log.Info("provider served batch",
			"provider", p.Name(),
			"count", len(articles))

		return Result{
			Articles:     articles,
			Source:       p.Name(),
			UsedFallback: i > 0,
		}, nil
	}

	metrics.Global.SetError("all news sources exhausted")
	return Result{}, ErrAllSourcesExhausted
}

// attempt runs one provider with its own timeout and retry budget, then
// drops invalid titles. A batch with nothing left counts as a failure.
func (c *Cascade) attempt(ctx context.Context, p provider.Provider, category string) ([]article.Article, error) {
	var articles []article.Article

	err := retry.Do(ctx, c.retryCfg, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		batch, err := p.Fetch(attemptCtx, category)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
			}
			return fmt.Errorf("%w: %v", ErrProviderError, err)
		}
		articles = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	usable := articles[:0]
	for _, a := range articles {
		if article.ValidTitle(a.Title) {
			usable = append(usable, a)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoUsableResults
	}
	return usable, nil
}
