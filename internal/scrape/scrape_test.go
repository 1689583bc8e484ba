package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/article"
)

const pageFixture = `<!DOCTYPE html>
<html>
<head>
	<meta property="og:image" content="https://img.example.com/lead.jpg">
</head>
<body>
<article>
	<p>The first paragraph of the story carries the essential facts.</p>
	<p>The second paragraph adds useful detail and context for readers.</p>
	<p>Subscribe to our newsletter for more updates.</p>
	<p>The third real paragraph wraps up the report with reactions.</p>
</article>
</body>
</html>`

func TestExtractRecoversBodyAndImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageFixture)
	}))
	defer srv.Close()

	page, err := NewExtractor().Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, page.Content, "first paragraph")
	assert.NotContains(t, page.Content, "Subscribe")
	assert.Equal(t, "https://img.example.com/lead.jpg", page.ImageURL)
}

func TestExtractFailsWithoutEnoughParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Just one line.</p></body></html>`)
	}))
	defer srv.Close()

	_, err := NewExtractor().Extract(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestHydrateAllFillsPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageFixture)
	}))
	defer srv.Close()

	in := []article.Article{
		{ID: "a", Title: "Needs hydration headline for this test case", Content: article.PlaceholderContent, URL: srv.URL, Category: "general", ImageURL: article.DefaultImage("general")},
		{ID: "b", Title: "Already has a body so it must stay intact", Content: "Existing full text.", URL: srv.URL},
		{ID: "c", Title: "No link so it keeps the placeholder text", Content: article.PlaceholderContent, URL: "#"},
	}

	out := NewExtractor().HydrateAll(context.Background(), in)

	require.Len(t, out, 3)
	assert.Contains(t, out[0].Content, "first paragraph")
	assert.Equal(t, "https://img.example.com/lead.jpg", out[0].ImageURL)
	assert.Equal(t, "Existing full text.", out[1].Content)
	assert.Equal(t, article.PlaceholderContent, out[2].Content)
}

func TestHydrateAllSurvivesDeadPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	in := []article.Article{
		{ID: "a", Title: "Needs hydration headline for this test case", Content: article.PlaceholderContent, URL: srv.URL},
	}

	out := NewExtractor().HydrateAll(context.Background(), in)
	assert.Equal(t, article.PlaceholderContent, out[0].Content)
}

func TestExtractContentSelectorFallback(t *testing.T) {
	html := `<html><body><div class="story-body">
		<p>The first paragraph of the story carries the essential facts.</p>
		<p>The second paragraph adds useful detail and context for readers.</p>
		<p>The third real paragraph wraps up the report with reactions.</p>
	</div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	content := extractContent(doc)
	assert.Contains(t, content, "second paragraph")
}
