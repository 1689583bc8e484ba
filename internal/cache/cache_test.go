package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/article"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New()

	_, _, ok := c.Get("general")
	assert.False(t, ok)

	batch := []article.Article{{ID: "a", Title: "A headline long enough to survive filtering"}}
	c.Set("general", batch, "Wire", time.Minute)

	got, source, ok := c.Get("general")
	require.True(t, ok)
	assert.Equal(t, "Wire", source)
	assert.Equal(t, batch, got)
}

func TestCacheExpiry(t *testing.T) {
	c := New()
	c.Set("general", []article.Article{{ID: "a"}}, "Wire", time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	_, _, ok := c.Get("general")
	assert.False(t, ok)
}

func TestCacheCategoriesAreIndependent(t *testing.T) {
	c := New()
	c.Set("sports", []article.Article{{ID: "s"}}, "Wire", time.Minute)

	_, _, ok := c.Get("general")
	assert.False(t, ok)

	got, _, ok := c.Get("sports")
	require.True(t, ok)
	assert.Equal(t, "s", got[0].ID)
}
