package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/article"
	"newshub/internal/provider"
	"newshub/internal/ratelimit"
	"newshub/internal/retry"
)

type fakeProvider struct {
	name     string
	articles []article.Article
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, category string) ([]article.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func goodBatch(n int) []article.Article {
	out := make([]article.Article, n)
	for i := range out {
		out[i] = article.Article{
			ID:    string(rune('a' + i)),
			Title: "A perfectly ordinary headline for testing",
		}
	}
	return out
}

func testCascade(providers ...provider.Provider) *Cascade {
	return NewCascade(providers, time.Second, retry.Config{MaxAttempts: 1, Delay: 0}, nil)
}

func TestCascadeFirstSuccessShortCircuits(t *testing.T) {
	first := &fakeProvider{name: "A", articles: goodBatch(3)}
	second := &fakeProvider{name: "B", articles: goodBatch(5)}

	res, err := testCascade(first, second).Fetch(context.Background(), "general")

	require.NoError(t, err)
	assert.Equal(t, "A", res.Source)
	assert.Len(t, res.Articles, 3)
	assert.False(t, res.UsedFallback)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later providers must not be contacted")
}

func TestCascadeFallsThroughOnFailure(t *testing.T) {
	first := &fakeProvider{name: "A", err: errors.New("boom")}
	second := &fakeProvider{name: "B", articles: goodBatch(5)}

	res, err := testCascade(first, second).Fetch(context.Background(), "general")

	require.NoError(t, err)
	assert.Equal(t, "B", res.Source)
	assert.True(t, res.UsedFallback, "batch served by the terminal provider")
}

func TestCascadeSoleProviderSuccessIsNotFallback(t *testing.T) {
	only := &fakeProvider{name: "A", articles: goodBatch(2)}

	res, err := testCascade(only).Fetch(context.Background(), "general")

	require.NoError(t, err)
	assert.False(t, res.UsedFallback, "a chain's only provider serving is the normal path")
}

func TestCascadeEmptyBatchCountsAsFailure(t *testing.T) {
	first := &fakeProvider{name: "A", articles: nil}
	second := &fakeProvider{name: "B", articles: []article.Article{{Title: "short"}}}
	third := &fakeProvider{name: "C", articles: goodBatch(2)}

	res, err := testCascade(first, second, third).Fetch(context.Background(), "general")

	require.NoError(t, err)
	assert.Equal(t, "C", res.Source)
}

func TestCascadeDropsInvalidTitlesFromServedBatch(t *testing.T) {
	p := &fakeProvider{name: "A", articles: append(goodBatch(2), article.Article{Title: "[Removed]"})}

	res, err := testCascade(p).Fetch(context.Background(), "general")

	require.NoError(t, err)
	assert.Len(t, res.Articles, 2)
}

func TestCascadeAllExhausted(t *testing.T) {
	first := &fakeProvider{name: "A", err: errors.New("down")}
	second := &fakeProvider{name: "B", articles: nil}

	_, err := testCascade(first, second).Fetch(context.Background(), "general")

	assert.ErrorIs(t, err, ErrAllSourcesExhausted)
}

func TestCascadeSkipsProviderOverQuota(t *testing.T) {
	first := &fakeProvider{name: "A", articles: goodBatch(2)}
	second := &fakeProvider{name: "B", articles: goodBatch(1)}

	limiter := ratelimit.New(map[string]int{"A": 1})
	c := NewCascade([]provider.Provider{first, second}, time.Second, retry.Config{MaxAttempts: 1, Delay: 0}, limiter)

	res, err := c.Fetch(context.Background(), "general")
	require.NoError(t, err)
	assert.Equal(t, "A", res.Source)

	// A's daily quota is spent; the next run skips it without a call.
	res, err = c.Fetch(context.Background(), "general")
	require.NoError(t, err)
	assert.Equal(t, "B", res.Source)
	assert.True(t, res.UsedFallback)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, c.QuotaStats())
}

func TestCascadeRetriesBeforeMovingOn(t *testing.T) {
	flaky := &fakeProvider{name: "A", err: errors.New("down")}
	backup := &fakeProvider{name: "B", articles: goodBatch(1)}

	c := NewCascade([]provider.Provider{flaky, backup}, time.Second, retry.Config{MaxAttempts: 3, Delay: 0}, nil)
	res, err := c.Fetch(context.Background(), "general")

	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, "B", res.Source)
}
