package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"newshub/internal/enrich"
	"newshub/internal/guardian"
	"newshub/internal/logger"
	"newshub/internal/personalize"
	"newshub/internal/pipeline"
	"newshub/internal/prefs"
	"newshub/internal/stocks"
	"newshub/internal/weather"
)

// NewsSource is the pipeline surface the handlers need.
type NewsSource interface {
	Fetch(ctx context.Context, category string) pipeline.Result
	Cached(category string) (pipeline.Result, bool)
	Search(ctx context.Context, query string) pipeline.Result
	Trending() []enrich.Topic
	QuotaStats() map[string]int
}

// GuardianSource proxies Guardian section queries.
type GuardianSource interface {
	Search(ctx context.Context, section string) ([]guardian.Item, error)
}

// WeatherSource proxies current conditions.
type WeatherSource interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// StocksSource serves the market strip.
type StocksSource interface {
	Quotes(ctx context.Context) ([]stocks.Quote, error)
}

// Server wires the HTTP surface over the pipeline and the user state
// manager.
type Server struct {
	echo     *echo.Echo
	news     NewsSource
	users    *prefs.Manager
	engine   *personalize.Engine
	guardian GuardianSource
	weather  WeatherSource
	stocks   StocksSource
}

func New(news NewsSource, users *prefs.Manager, g GuardianSource, w WeatherSource, s StocksSource) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(accessLog())
	e.Use(middleware.CORS())

	srv := &Server{
		echo:     e,
		news:     news,
		users:    users,
		engine:   personalize.New(),
		guardian: g,
		weather:  w,
		stocks:   s,
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.GET("/news/:category", s.handleNews)
	api.GET("/news/:category/raw", s.handleNewsRaw)
	api.GET("/search", s.handleSearch)
	api.GET("/trending", s.handleTrending)

	api.GET("/guardian/:category", s.handleGuardian)
	api.GET("/weather/:city", s.handleWeather)
	api.GET("/stocks", s.handleStocks)

	api.GET("/preferences", s.handleGetPreferences)
	api.PUT("/preferences", s.handleUpdatePreferences)
	api.DELETE("/preferences", s.handleResetPreferences)

	api.GET("/history", s.handleHistory)
	api.POST("/history", s.handleTrackView)
	api.PATCH("/history/:articleID/readtime", s.handleReadTime)

	api.GET("/profile", s.handleProfile)

	api.GET("/saved", s.handleSavedList)
	api.POST("/saved", s.handleSave)
	api.DELETE("/saved/:id", s.handleUnsave)

	api.GET("/recommendations", s.handleRecommendations)
	api.GET("/similar/:id", s.handleSimilar)

	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", s.handleMetrics)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.Set("requestID", id)
			return next(c)
		}
	}
}

func accessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("request",
				"id", c.Get("requestID"),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start).String())
			return err
		}
	}
}
