package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server settings
	Port  string
	Debug bool

	// Provider API keys (empty key disables that provider)
	NewsDataAPIKey  string
	NewsAPIAIAPIKey string
	GNewsAPIKey     string
	NewsAPIKey      string
	GuardianAPIKey  string
	WeatherAPIKey   string
	FinnhubToken    string
	GeminiAPIKey    string

	// Fetch settings
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	HydrateContent bool

	// Per-provider daily request quotas (0 = unlimited)
	ProviderQuotas map[string]int

	// RSS settings
	FeedsConfigPath string

	// Storage: memory | file | postgres
	StoreBackend  string
	StoreFilePath string
	DatabaseURL   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		RequestTimeout:  10 * time.Second,
		RetryAttempts:   getEnvIntOrDefault("RETRY_ATTEMPTS", 2),
		RetryDelay:      2 * time.Second,
		CacheTTL:        15 * time.Minute,
		FeedsConfigPath: getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		StoreBackend:    getEnvOrDefault("STORE", "memory"),
		StoreFilePath:   getEnvOrDefault("STORE_FILE_PATH", "user_state.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
	}

	cfg.NewsDataAPIKey = os.Getenv("NEWSDATA_API_KEY")
	cfg.NewsAPIAIAPIKey = os.Getenv("NEWSAPI_AI_API_KEY")
	cfg.GNewsAPIKey = os.Getenv("GNEWS_API_KEY")
	cfg.NewsAPIKey = os.Getenv("NEWSAPI_API_KEY")
	cfg.GuardianAPIKey = os.Getenv("GUARDIAN_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	cfg.FinnhubToken = os.Getenv("FINNHUB_TOKEN")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.ProviderQuotas = map[string]int{
		"NewsData.io": getEnvIntOrDefault("NEWSDATA_DAILY_QUOTA", 200),
		"NewsAPI.ai":  getEnvIntOrDefault("NEWSAPI_AI_DAILY_QUOTA", 100),
		"GNews":       getEnvIntOrDefault("GNEWS_DAILY_QUOTA", 100),
		"NewsAPI":     getEnvIntOrDefault("NEWSAPI_DAILY_QUOTA", 100),
	}

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.CacheTTL = time.Duration(val) * time.Minute
		}
	}
	if os.Getenv("HYDRATE_CONTENT") == "true" {
		cfg.HydrateContent = true
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "file":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return fmt.Errorf("STORE must be 'memory', 'file' or 'postgres'")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// FeedsConfig is the YAML layout for category feed overrides:
//
//	feeds:
//	  technology: https://...
type FeedsConfig struct {
	Feeds map[string]string `yaml:"feeds"`
}

// LoadFeeds reads per-category RSS feed overrides from a YAML file.
// A missing file is not an error; the built-in feed map covers defaults.
func LoadFeeds(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}
