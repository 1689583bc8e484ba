package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newshub/internal/cache"
	"newshub/internal/config"
	"newshub/internal/enrich"
	"newshub/internal/fetch"
	"newshub/internal/guardian"
	"newshub/internal/logger"
	"newshub/internal/pipeline"
	"newshub/internal/prefs"
	"newshub/internal/provider"
	"newshub/internal/ratelimit"
	"newshub/internal/retry"
	"newshub/internal/scrape"
	"newshub/internal/server"
	"newshub/internal/stocks"
	"newshub/internal/store"
	"newshub/internal/weather"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	userStore, closer, err := buildStore(cfg)
	if err != nil {
		logger.Error("failed to open user state store", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer()
	}

	providers := buildProviders(cfg)
	if len(providers) == 0 {
		logger.Error("no providers configured")
		os.Exit(1)
	}

	limiter := ratelimit.New(cfg.ProviderQuotas)
	cascade := fetch.NewCascade(providers, cfg.RequestTimeout, retry.Config{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	}, limiter)

	enricher, closeEnricher := buildEnricher(cfg)
	if closeEnricher != nil {
		defer closeEnricher()
	}

	pipe := pipeline.New(cascade, enricher, cache.New(), scrape.NewExtractor(), pipeline.Config{
		CacheTTL:       cfg.CacheTTL,
		HydrateContent: cfg.HydrateContent,
	})

	srv := server.New(
		pipe,
		prefs.NewManager(userStore),
		guardian.New(cfg.GuardianAPIKey),
		weather.New(cfg.WeatherAPIKey),
		stocks.New(cfg.FinnhubToken),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// buildProviders assembles the cascade in priority order. Providers
// without keys are skipped; the keyless Google News RSS feed always
// terminates the chain.
func buildProviders(cfg *config.Config) []provider.Provider {
	var providers []provider.Provider

	if cfg.NewsDataAPIKey != "" {
		providers = append(providers, provider.NewNewsData(cfg.NewsDataAPIKey))
	}
	if cfg.NewsAPIAIAPIKey != "" {
		providers = append(providers, provider.NewNewsAPIAI(cfg.NewsAPIAIAPIKey))
	}
	if cfg.GNewsAPIKey != "" {
		providers = append(providers, provider.NewGNews(cfg.GNewsAPIKey))
	}
	if cfg.NewsAPIKey != "" {
		providers = append(providers, provider.NewNewsAPI(cfg.NewsAPIKey))
	}

	feeds, err := config.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		logger.Warn("could not read feeds config, using defaults", "path", cfg.FeedsConfigPath, "error", err)
	}
	providers = append(providers, provider.NewGoogleNewsRSS(feeds))

	return providers
}

func buildStore(cfg *config.Config) (store.PersistentStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	case "file":
		f, err := store.NewFile(cfg.StoreFilePath)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	default:
		return store.NewMemory(), nil, nil
	}
}

func buildEnricher(cfg *config.Config) (enrich.Enricher, func()) {
	if cfg.GeminiAPIKey == "" {
		logger.Info("no Gemini key configured, AI enrichment disabled")
		return enrich.NewIdentity(), nil
	}
	g, err := enrich.NewGemini(cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn("Gemini client failed to start, AI enrichment disabled", "error", err)
		return enrich.NewIdentity(), nil
	}
	return g, g.Close
}
