package personalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/article"
	"newshub/internal/prefs"
	"newshub/internal/profile"
)

var clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedEngine() *Engine {
	return &Engine{Now: func() time.Time { return clock }}
}

func TestFilterDropsExcludedCategory(t *testing.T) {
	e := fixedEngine()
	p := prefs.Defaults()
	p.Categories["sports"] = false

	kept := e.Filter([]article.Article{
		{ID: "a", Category: "sports"},
		{ID: "b", Category: "technology"},
		{ID: "c"}, // no category always passes
	}, p)

	require.Len(t, kept, 2)
	assert.Equal(t, "b", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)
}

func TestFilterDropsExcludedSentiment(t *testing.T) {
	e := fixedEngine()
	p := prefs.Defaults()
	p.SentimentFilter["negative"] = false

	kept := e.Filter([]article.Article{
		{ID: "a", Enrichment: &article.Enrichment{Sentiment: &article.Sentiment{Type: "negative"}}},
		{ID: "b", Enrichment: &article.Enrichment{Sentiment: &article.Sentiment{Type: "positive"}}},
		{ID: "c", Enrichment: &article.Enrichment{}}, // no sentiment passes
		{ID: "d"}, // no enrichment passes
	}, p)

	require.Len(t, kept, 3)
	assert.Equal(t, "b", kept[0].ID)
}

func TestFilterCredibilityOnlyWhenPresent(t *testing.T) {
	e := fixedEngine()
	p := prefs.Defaults()
	p.MinCredibilityScore = 60

	kept := e.Filter([]article.Article{
		{ID: "low", Enrichment: &article.Enrichment{CredibilityScore: 40}},
		{ID: "high", Enrichment: &article.Enrichment{CredibilityScore: 80}},
		{ID: "unscored", Enrichment: &article.Enrichment{}},
	}, p)

	require.Len(t, kept, 2)
	assert.Equal(t, "high", kept[0].ID)
	assert.Equal(t, "unscored", kept[1].ID)
}

func TestFilterHideHighBias(t *testing.T) {
	e := fixedEngine()
	p := prefs.Defaults()
	p.HideHighBias = true

	kept := e.Filter([]article.Article{
		{ID: "a", Enrichment: &article.Enrichment{BiasLevel: "high", CredibilityScore: 90}},
		{ID: "b", Enrichment: &article.Enrichment{BiasLevel: "low", CredibilityScore: 90}},
	}, p)

	require.Len(t, kept, 1)
	assert.Equal(t, "b", kept[0].ID)
}

func TestRankPrefersInterestsAndRecency(t *testing.T) {
	e := fixedEngine()
	pr := profile.Profile{
		Interests:  map[string]int{"technology": 3},
		TopSources: []profile.SourceCount{{Source: "The Hindu", Count: 2}},
	}

	stale := article.Article{ID: "stale", Category: "world", PublishedAt: clock.Add(-20 * time.Hour)}
	interesting := article.Article{ID: "tech", Category: "technology", Source: "The Hindu", PublishedAt: clock.Add(-20 * time.Hour)}
	fresh := article.Article{ID: "fresh", Category: "world", PublishedAt: clock.Add(-1 * time.Hour)}

	ranked := e.Rank([]article.Article{stale, fresh, interesting}, pr)

	require.Len(t, ranked, 3)
	// interest 3*10 + source 2*5 = 40 beats recency 30 beats nothing.
	assert.Equal(t, "tech", ranked[0].ID)
	assert.Equal(t, "fresh", ranked[1].ID)
	assert.Equal(t, "stale", ranked[2].ID)
}

func TestRankSentimentAndImpactBonuses(t *testing.T) {
	e := fixedEngine()
	pr := profile.Profile{Interests: map[string]int{}, PreferredSentiment: "positive"}

	plain := article.Article{ID: "plain"}
	matching := article.Article{ID: "match", Enrichment: &article.Enrichment{
		Sentiment: &article.Sentiment{Type: "positive"},
		Impact:    &article.Impact{Level: "high"},
	}}

	ranked := e.Rank([]article.Article{plain, matching}, pr)

	assert.Equal(t, "match", ranked[0].ID)
}

func TestRankStableForEqualScores(t *testing.T) {
	e := fixedEngine()
	pr := profile.Profile{Interests: map[string]int{}}

	in := []article.Article{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	ranked := e.Rank(in, pr)

	assert.Equal(t, []string{"a", "b", "c"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
	// Input was not reordered in place.
	assert.Equal(t, "a", in[0].ID)
}

func TestRecommendLimitsCount(t *testing.T) {
	e := fixedEngine()
	pr := profile.Profile{Interests: map[string]int{}}

	in := []article.Article{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, e.Recommend(in, pr, 2), 2)
	assert.Len(t, e.Recommend(in, pr, 10), 3)
}

func TestSimilarExcludesTargetAndRanksByOverlap(t *testing.T) {
	e := fixedEngine()

	target := article.Article{ID: "t", Category: "technology", Enrichment: &article.Enrichment{
		Sentiment: &article.Sentiment{Type: "neutral"},
		Entities:  &article.Entities{People: []string{"A. Sharma"}, Organizations: []string{"ISRO"}},
	}}

	sameEverything := article.Article{ID: "close", Category: "technology", Enrichment: &article.Enrichment{
		Sentiment: &article.Sentiment{Type: "neutral"},
		Entities:  &article.Entities{Organizations: []string{"ISRO"}},
	}}
	sameCategory := article.Article{ID: "cat", Category: "technology"}
	unrelated := article.Article{ID: "far", Category: "sports"}

	out := e.Similar(target, []article.Article{target, unrelated, sameCategory, sameEverything}, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "close", out[0].ID)
	assert.Equal(t, "cat", out[1].ID)
}

func TestSimilarTiesKeepEncounterOrder(t *testing.T) {
	e := fixedEngine()
	target := article.Article{ID: "t", Category: "world"}

	out := e.Similar(target, []article.Article{
		{ID: "first", Category: "world"},
		{ID: "second", Category: "world"},
	}, 5)

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
}
