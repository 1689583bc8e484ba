package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"newshub/internal/article"
	"newshub/internal/enrich"
	"newshub/internal/metrics"
	"newshub/internal/pipeline"
	"newshub/internal/prefs"
	"newshub/internal/provider"
)

// newsEnvelope is the shape every news endpoint responds with.
type newsEnvelope struct {
	Success        bool              `json:"success"`
	Articles       []article.Article `json:"articles"`
	Source         string            `json:"source,omitempty"`
	AIProcessed    bool              `json:"aiProcessed"`
	FallbackMode   bool              `json:"fallbackMode"`
	TrendingTopics []enrich.Topic    `json:"trendingTopics,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorEnvelope{Success: false, Error: msg})
}

func envelope(res pipeline.Result, articles []article.Article) newsEnvelope {
	if articles == nil {
		articles = []article.Article{}
	}
	return newsEnvelope{
		Success:        true,
		Articles:       articles,
		Source:         res.Source,
		AIProcessed:    res.AIProcessed,
		FallbackMode:   res.FallbackMode,
		TrendingTopics: res.Trending,
	}
}

// handleNews serves the personalized batch: fetched, filtered by
// preferences, then ranked against the reading profile.
func (s *Server) handleNews(c echo.Context) error {
	res := s.news.Fetch(c.Request().Context(), c.Param("category"))

	filtered := s.engine.Filter(res.Articles, s.users.Preferences())
	ranked := s.engine.Rank(filtered, s.users.Profile())

	return c.JSON(http.StatusOK, envelope(res, ranked))
}

// handleNewsRaw serves the batch without personalization.
func (s *Server) handleNewsRaw(c echo.Context) error {
	res := s.news.Fetch(c.Request().Context(), c.Param("category"))
	return c.JSON(http.StatusOK, envelope(res, res.Articles))
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		if cat := c.QueryParam("category"); cat != "" {
			query = provider.SearchQuery(cat)
		}
	}
	if query == "" {
		return fail(c, http.StatusBadRequest, "missing query parameter 'q'")
	}

	res := s.news.Search(c.Request().Context(), query)
	return c.JSON(http.StatusOK, envelope(res, res.Articles))
}

func (s *Server) handleTrending(c echo.Context) error {
	topics := s.news.Trending()
	if topics == nil {
		topics = []enrich.Topic{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"trendingTopics": topics,
	})
}

func (s *Server) handleGuardian(c echo.Context) error {
	items, err := s.guardian.Search(c.Request().Context(), c.Param("category"))
	if err != nil {
		return fail(c, http.StatusBadGateway, "failed to fetch Guardian news")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"articles": items,
	})
}

func (s *Server) handleWeather(c echo.Context) error {
	report, err := s.weather.Current(c.Request().Context(), c.Param("city"))
	if err != nil {
		return fail(c, http.StatusBadGateway, "failed to fetch weather")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    report,
	})
}

func (s *Server) handleStocks(c echo.Context) error {
	quotes, err := s.stocks.Quotes(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusBadGateway, "unable to fetch live market data")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stocks":  quotes,
	})
}

func (s *Server) handleGetPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"preferences": s.users.Preferences(),
	})
}

func (s *Server) handleUpdatePreferences(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "cannot read body")
	}

	updated, err := s.users.UpdatePreferences(raw)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to persist preferences")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"preferences": updated,
	})
}

func (s *Server) handleResetPreferences(c echo.Context) error {
	if err := s.users.ResetPreferences(); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to reset preferences")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"preferences": prefs.Defaults(),
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"history": s.users.History(),
	})
}

func (s *Server) handleTrackView(c echo.Context) error {
	var a article.Article
	if err := c.Bind(&a); err != nil {
		return fail(c, http.StatusBadRequest, "invalid article payload")
	}
	if a.ID == "" {
		return fail(c, http.StatusBadRequest, "article id is required")
	}

	entry, err := s.users.TrackView(a)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to record view")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"entry":   entry,
		"profile": s.users.Profile(),
	})
}

func (s *Server) handleReadTime(c echo.Context) error {
	var body struct {
		Seconds int `json:"seconds"`
	}
	if err := c.Bind(&body); err != nil || body.Seconds < 0 {
		return fail(c, http.StatusBadRequest, "invalid read time payload")
	}

	if err := s.users.UpdateReadTime(c.Param("articleID"), body.Seconds); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to update read time")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": s.users.Profile(),
	})
}

func (s *Server) handleProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": s.users.Profile(),
	})
}

func (s *Server) handleSavedList(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"saved":   s.users.SavedArticles(),
	})
}

func (s *Server) handleSave(c echo.Context) error {
	var a article.Article
	if err := c.Bind(&a); err != nil {
		return fail(c, http.StatusBadRequest, "invalid article payload")
	}
	if a.ID == "" {
		return fail(c, http.StatusBadRequest, "article id is required")
	}

	if err := s.users.SaveArticle(a); err != nil {
		if errors.Is(err, prefs.ErrAlreadySaved) {
			return fail(c, http.StatusConflict, "article already saved")
		}
		return fail(c, http.StatusInternalServerError, "failed to save article")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true})
}

func (s *Server) handleUnsave(c echo.Context) error {
	if err := s.users.UnsaveArticle(c.Param("id")); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to remove saved article")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// handleRecommendations serves the top personalized picks from the
// current general batch, preferences applied first.
func (s *Server) handleRecommendations(c echo.Context) error {
	n := queryInt(c, "n", 5)
	category := c.QueryParam("category")
	if category == "" {
		category = "general"
	}

	res, ok := s.news.Cached(category)
	if !ok {
		res = s.news.Fetch(c.Request().Context(), category)
	}

	filtered := s.engine.Filter(res.Articles, s.users.Preferences())
	recs := s.engine.Recommend(filtered, s.users.Profile(), n)

	return c.JSON(http.StatusOK, envelope(res, recs))
}

// handleSimilar finds articles close to a target within its batch.
func (s *Server) handleSimilar(c echo.Context) error {
	id := c.Param("id")
	n := queryInt(c, "n", 5)
	category := c.QueryParam("category")
	if category == "" {
		category = "general"
	}

	res, ok := s.news.Cached(category)
	if !ok {
		res = s.news.Fetch(c.Request().Context(), category)
	}

	var target *article.Article
	for i := range res.Articles {
		if res.Articles[i].ID == id {
			target = &res.Articles[i]
			break
		}
	}
	if target == nil {
		return fail(c, http.StatusNotFound, "article not found in current batch")
	}

	similar := s.engine.Similar(*target, res.Articles, n)
	return c.JSON(http.StatusOK, envelope(res, similar))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

func (s *Server) handleMetrics(c echo.Context) error {
	stats := metrics.Global.GetStats()
	if quotas := s.news.QuotaStats(); quotas != nil {
		stats["provider_requests"] = quotas
	}
	return c.JSON(http.StatusOK, stats)
}

func queryInt(c echo.Context, name string, fallback int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
