package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"newshub/internal/article"
)

const (
	geminiModel     = "gemini-1.5-flash"
	maxPromptChars  = 6000
	maxBatchPerCall = 20
)

// Gemini annotates article batches with sentiment, credibility, bias,
// impact, entities and a short summary in a single model call per batch.
type Gemini struct {
	client *genai.Client

	mu     sync.Mutex
	topics []Topic
}

func NewGemini(apiKey string) (*Gemini, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

type geminiAnnotation struct {
	Sentiment        string   `json:"sentiment"`
	Confidence       int      `json:"confidence"`
	CredibilityScore int      `json:"credibilityScore"`
	BiasLevel        string   `json:"biasLevel"`
	ImpactLevel      string   `json:"impactLevel"`
	ImpactScore      int      `json:"impactScore"`
	People           []string `json:"people"`
	Places           []string `json:"places"`
	Organizations    []string `json:"organizations"`
	Summary          string   `json:"summary"`
}

type geminiEnvelope struct {
	Articles []geminiAnnotation `json:"articles"`
	Trending []Topic            `json:"trendingTopics"`
}

func (g *Gemini) Enrich(ctx context.Context, articles []article.Article) ([]article.Article, error) {
	if len(articles) == 0 {
		return articles, nil
	}

	batch := articles
	if len(batch) > maxBatchPerCall {
		batch = batch[:maxBatchPerCall]
	}

	env, err := g.annotate(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(env.Articles) != len(batch) {
		return nil, fmt.Errorf("gemini returned %d annotations for %d articles", len(env.Articles), len(batch))
	}

	out := make([]article.Article, len(articles))
	copy(out, articles)
	for i, ann := range env.Articles {
		out[i].Enrichment = ann.toEnrichment()
	}

	g.mu.Lock()
	g.topics = env.Trending
	g.mu.Unlock()

	return out, nil
}

func (g *Gemini) TrendingTopics() []Topic {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Topic, len(g.topics))
	copy(out, g.topics)
	return out
}

func (ann geminiAnnotation) toEnrichment() *article.Enrichment {
	e := &article.Enrichment{
		CredibilityScore: ann.CredibilityScore,
		BiasLevel:        ann.BiasLevel,
		Summary:          ann.Summary,
	}
	if ann.Sentiment != "" {
		e.Sentiment = &article.Sentiment{Type: ann.Sentiment, Confidence: ann.Confidence}
	}
	if ann.ImpactLevel != "" {
		e.Impact = &article.Impact{Level: ann.ImpactLevel, Score: ann.ImpactScore}
	}
	if len(ann.People) > 0 || len(ann.Places) > 0 || len(ann.Organizations) > 0 {
		e.Entities = &article.Entities{
			People:        ann.People,
			Places:        ann.Places,
			Organizations: ann.Organizations,
		}
	}
	return e
}

func (g *Gemini) annotate(ctx context.Context, batch []article.Article) (*geminiEnvelope, error) {
	model := g.client.GenerativeModel(geminiModel)

	var sb strings.Builder
	for i, a := range batch {
		fmt.Fprintf(&sb, "%d. %s\n%s\n\n", i+1, a.Title, clampText(a.Description))
	}

	prompt := fmt.Sprintf(`Analyze these %d news items and respond with ONLY a JSON object, no markdown.

Schema:
{
  "articles": [
    {
      "sentiment": "positive|negative|neutral",
      "confidence": 0-100,
      "credibilityScore": 0-100,
      "biasLevel": "low|medium|high",
      "impactLevel": "low|medium|high",
      "impactScore": 0-100,
      "people": ["..."],
      "places": ["..."],
      "organizations": ["..."],
      "summary": "one sentence"
    }
  ],
  "trendingTopics": [{"topic": "...", "count": 1}]
}

The articles array must contain exactly %d entries, in the same order as the input.

NEWS ITEMS:
%s`, len(batch), len(batch), sb.String())

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	raw = stripCodeFences(raw)

	var env geminiEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("could not parse Gemini response: %w", err)
	}
	return &env, nil
}

func clampText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxPromptChars {
		runes := []rune(s)
		s = string(runes[:maxPromptChars])
	}
	return s
}

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes adds.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
