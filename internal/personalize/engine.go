// Package personalize filters, scores and ranks article batches against a
// user's preferences and derived profile. All weights are fixed constants of
// the design, and every sort is stable so identical inputs always produce
// identical output order.
package personalize

import (
	"sort"
	"time"

	"newshub/internal/article"
	"newshub/internal/prefs"
	"newshub/internal/profile"
)

// Ranking weights.
const (
	weightInterest       = 10
	weightSourceCount    = 5
	weightSentimentMatch = 20
	weightHighImpact     = 25

	recencyBonus2h  = 30
	recencyBonus6h  = 20
	recencyBonus12h = 10
)

// Similarity weights.
const (
	simSameCategory   = 30
	simSharedPerson   = 10
	simSharedOrg      = 10
	simSentimentMatch = 10
)

// Engine scores articles. The clock is injectable so recency bonuses are
// deterministic under test.
type Engine struct {
	Now func() time.Time
}

func New() *Engine {
	return &Engine{Now: time.Now}
}

// Filter drops articles the preferences explicitly exclude. Absence of a
// field never causes rejection: articles without a category, sentiment or
// credibility score pass those checks.
func (e *Engine) Filter(articles []article.Article, p prefs.Preferences) []article.Article {
	var kept []article.Article
	for _, a := range articles {
		if a.Category != "" {
			if allowed, ok := p.Categories[a.Category]; ok && !allowed {
				continue
			}
		}
		if enr := a.Enrichment; enr != nil {
			if enr.Sentiment != nil {
				if allowed, ok := p.SentimentFilter[enr.Sentiment.Type]; ok && !allowed {
					continue
				}
			}
			if enr.CredibilityScore > 0 && enr.CredibilityScore < p.MinCredibilityScore {
				continue
			}
			if p.HideHighBias && enr.BiasLevel == "high" {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

// Rank orders articles descending by personalized score. The sort is stable:
// equal scores keep input order.
func (e *Engine) Rank(articles []article.Article, pr profile.Profile) []article.Article {
	ranked := make([]article.Article, len(articles))
	copy(ranked, articles)

	now := e.Now()
	scores := make([]float64, len(ranked))
	for i, a := range ranked {
		scores[i] = e.score(a, pr, now)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[i] > scores[j]
	})
	return ranked
}

// score computes the fixed-weight personalized score for one article.
func (e *Engine) score(a article.Article, pr profile.Profile, now time.Time) float64 {
	var score float64

	if a.Category != "" {
		score += float64(weightInterest * pr.Interests[a.Category])
	}

	for _, s := range pr.TopSources {
		if s.Source == a.Source {
			score += float64(weightSourceCount * s.Count)
			break
		}
	}

	if enr := a.Enrichment; enr != nil {
		if enr.Sentiment != nil && pr.PreferredSentiment != "" && enr.Sentiment.Type == pr.PreferredSentiment {
			score += weightSentimentMatch
		}
		if enr.CredibilityScore > 0 {
			score += float64(enr.CredibilityScore) / 5
		}
		if enr.Impact != nil && enr.Impact.Level == "high" {
			score += weightHighImpact
		}
	}

	if !a.PublishedAt.IsZero() {
		switch age := now.Sub(a.PublishedAt); {
		case age < 2*time.Hour:
			score += recencyBonus2h
		case age < 6*time.Hour:
			score += recencyBonus6h
		case age < 12*time.Hour:
			score += recencyBonus12h
		}
	}

	return score
}

// Recommend ranks and returns the first n articles.
func (e *Engine) Recommend(articles []article.Article, pr profile.Profile, n int) []article.Article {
	ranked := e.Rank(articles, pr)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Similar returns up to n candidates most similar to target, excluding the
// target itself. Ties keep encounter order.
func (e *Engine) Similar(target article.Article, candidates []article.Article, n int) []article.Article {
	var pool []article.Article
	scores := make(map[int]int)
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		scores[len(pool)] = similarity(target, c)
		pool = append(pool, c)
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})

	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]article.Article, 0, len(idx))
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func similarity(target, c article.Article) int {
	score := 0

	if c.Category == target.Category && target.Category != "" {
		score += simSameCategory
	}

	if target.Enrichment != nil && c.Enrichment != nil {
		te, ce := target.Enrichment, c.Enrichment
		if te.Entities != nil && ce.Entities != nil {
			score += simSharedPerson * sharedCount(te.Entities.People, ce.Entities.People)
			score += simSharedOrg * sharedCount(te.Entities.Organizations, ce.Entities.Organizations)
		}
		if te.Sentiment != nil && ce.Sentiment != nil && te.Sentiment.Type == ce.Sentiment.Type {
			score += simSentimentMatch
		}
	}

	return score
}

func sharedCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	count := 0
	for _, v := range b {
		if _, ok := set[v]; ok {
			count++
		}
	}
	return count
}
