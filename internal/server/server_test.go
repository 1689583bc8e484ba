package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/article"
	"newshub/internal/enrich"
	"newshub/internal/guardian"
	"newshub/internal/pipeline"
	"newshub/internal/prefs"
	"newshub/internal/stocks"
	"newshub/internal/store"
	"newshub/internal/weather"
)

type stubNews struct {
	result    pipeline.Result
	cached    bool
	lastQuery string
	quotas    map[string]int
}

func (s *stubNews) Fetch(ctx context.Context, category string) pipeline.Result { return s.result }

func (s *stubNews) Cached(category string) (pipeline.Result, bool) {
	if !s.cached {
		return pipeline.Result{}, false
	}
	return s.result, true
}

func (s *stubNews) Search(ctx context.Context, query string) pipeline.Result {
	s.lastQuery = query
	return s.result
}

func (s *stubNews) Trending() []enrich.Topic { return s.result.Trending }

func (s *stubNews) QuotaStats() map[string]int { return s.quotas }

type stubGuardian struct{ err error }

func (s *stubGuardian) Search(ctx context.Context, section string) ([]guardian.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []guardian.Item{{WebTitle: "A Guardian story"}}, nil
}

type stubWeather struct{}

func (stubWeather) Current(ctx context.Context, city string) (*weather.Report, error) {
	r := &weather.Report{}
	r.Location.Name = city
	r.Current.TempC = 31.5
	return r, nil
}

type stubStocks struct{}

func (stubStocks) Quotes(ctx context.Context) ([]stocks.Quote, error) {
	return []stocks.Quote{{Name: "SENSEX", Price: "81,500.25", Change: "+0.62%", Up: true}}, nil
}

func testBatch() []article.Article {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []article.Article{
		{ID: "a", Title: "Parliament passes long-pending data protection bill", Category: "general", Source: "Wire", PublishedAt: now},
		{ID: "b", Title: "Chip maker announces new fabrication plant in Gujarat", Category: "technology", Source: "Wire", PublishedAt: now.Add(-time.Hour)},
	}
}

func newTestServer(t *testing.T) (*Server, *stubNews) {
	t.Helper()
	news := &stubNews{result: pipeline.Result{
		Articles:    testBatch(),
		Source:      "Wire",
		AIProcessed: true,
	}}
	srv := New(news, prefs.NewManager(store.NewMemory()), &stubGuardian{}, stubWeather{}, stubStocks{})
	return srv, news
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echoContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func TestNewsEndpointEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/news/general", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success     bool              `json:"success"`
		Articles    []article.Article `json:"articles"`
		Source      string            `json:"source"`
		AIProcessed bool              `json:"aiProcessed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Wire", body.Source)
	assert.True(t, body.AIProcessed)
	assert.Len(t, body.Articles, 2)
}

func TestNewsEndpointAppliesPreferenceFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/preferences", `{"categories": {"technology": false}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/news/general", "")
	var body struct {
		Articles []article.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Articles, 1)
	assert.Equal(t, "a", body.Articles[0].ID)
}

func TestSearchRequiresQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/search?q=chips", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrendingEndpoint(t *testing.T) {
	srv, news := newTestServer(t)
	news.result.Trending = []enrich.Topic{{Topic: "monsoon", Count: 4}}

	rec := do(t, srv, http.MethodGet, "/api/trending", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success  bool           `json:"success"`
		Trending []enrich.Topic `json:"trendingTopics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Trending, 1)
	assert.Equal(t, "monsoon", body.Trending[0].Topic)

	news.result.Trending = nil
	rec = do(t, srv, http.MethodGet, "/api/trending", "")
	assert.Contains(t, rec.Body.String(), `"trendingTopics":[]`)
}

func TestSearchByCategoryExpandsQuery(t *testing.T) {
	srv, news := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/search?category=sports", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, news.lastQuery, "cricket")

	rec = do(t, srv, http.MethodGet, "/api/search?category=astrology", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "India news", news.lastQuery)
}

func TestGuardianPassThroughAndFailure(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/guardian/world", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := New(&stubNews{}, prefs.NewManager(store.NewMemory()), &stubGuardian{err: errors.New("down")}, stubWeather{}, stubStocks{})
	rec = do(t, failing, http.MethodGet, "/api/guardian/world", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWeatherEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/weather/Mumbai", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mumbai")
}

func TestStocksEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SENSEX")
}

func TestPreferencesLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/preferences", `{"minCredibilityScore": 70}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/preferences", "")
	assert.Contains(t, rec.Body.String(), `"minCredibilityScore":70`)

	rec = do(t, srv, http.MethodDelete, "/api/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/preferences", "")
	assert.Contains(t, rec.Body.String(), `"minCredibilityScore":50`)
}

func TestTrackViewAndProfile(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/history", `{"id": "a", "title": "Parliament passes long-pending data protection bill", "category": "general", "source": "Wire"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activityScore":2`)

	rec = do(t, srv, http.MethodPost, "/api/history", `{"title": "missing id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadTimeBackfill(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/history", `{"id": "a", "category": "general"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPatch, "/api/history/a/readtime", `{"seconds": 90}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"avgReadingTimeSeconds":90`)
}

func TestSavedArticlesLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	payload := `{"id": "a", "title": "Parliament passes long-pending data protection bill"}`

	rec := do(t, srv, http.MethodPost, "/api/saved", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Saving twice conflicts.
	rec = do(t, srv, http.MethodPost, "/api/saved", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/saved", "")
	assert.Contains(t, rec.Body.String(), `"id":"a"`)

	rec = do(t, srv, http.MethodDelete, "/api/saved/a", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/saved", "")
	assert.NotContains(t, rec.Body.String(), `"id":"a"`)
}

func TestRecommendationsLimit(t *testing.T) {
	srv, news := newTestServer(t)
	news.cached = true

	rec := do(t, srv, http.MethodGet, "/api/recommendations?n=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Articles []article.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Articles, 1)
}

func TestSimilarEndpoint(t *testing.T) {
	srv, news := newTestServer(t)
	news.cached = true

	rec := do(t, srv, http.MethodGet, "/api/similar/a", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Articles []article.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Articles, 1)
	assert.Equal(t, "b", body.Articles[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/similar/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsIncludeProviderQuotas(t *testing.T) {
	srv, news := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	assert.NotContains(t, rec.Body.String(), "provider_requests")

	news.quotas = map[string]int{"NewsData.io": 7}
	rec = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `"provider_requests":{"NewsData.io":7}`)
}
