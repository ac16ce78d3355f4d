package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	IsProduction    bool
	DatabaseURL     string // optional; the submission journal stays in memory when empty
	FrontendBaseURL string
	PosthogAPIKey   string
	PosthogEndpoint string

	// Upstream exchange backend
	ExchangeAPIBaseURL string
	ExchangeAPITimeout time.Duration

	// Session cookie
	SessionJWTSecret  string
	SessionCookieName string
	SessionExpiry     time.Duration

	// Query cache windows
	RatesStaleTime       time.Duration
	RatesRefetchInterval time.Duration
	WalletsStaleTime     time.Duration
	OrdersStaleTime      time.Duration
	QuoteStaleTime       time.Duration
	CacheGCTime          time.Duration
	CacheMaxEntries      int
	QueryRetryCount      int

	// Exchange form
	QuoteDebounce   time.Duration
	DeskIdleTimeout time.Duration
	DeskMaxForms    int

	// Rate limits, in ulule/limiter format ("5-M")
	LoginRateLimit string
	QuoteRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("EXCHANGE_API_BASE_URL", "http://localhost:8081")
	viper.SetDefault("EXCHANGE_API_TIMEOUT", "10s")
	viper.SetDefault("SESSION_JWT_SECRET", "")
	viper.SetDefault("SESSION_COOKIE_NAME", "token")
	viper.SetDefault("SESSION_EXPIRY", "168h")
	viper.SetDefault("RATES_STALE_TIME", "55s")
	viper.SetDefault("RATES_REFETCH_INTERVAL", "60s")
	viper.SetDefault("WALLETS_STALE_TIME", "5m")
	viper.SetDefault("ORDERS_STALE_TIME", "60s")
	viper.SetDefault("QUOTE_STALE_TIME", "30s")
	viper.SetDefault("CACHE_GC_TIME", "10m")
	viper.SetDefault("CACHE_MAX_ENTRIES", 4096)
	viper.SetDefault("QUERY_RETRY_COUNT", 2)
	viper.SetDefault("QUOTE_DEBOUNCE", "300ms")
	viper.SetDefault("DESK_IDLE_TIMEOUT", "30m")
	viper.SetDefault("DESK_MAX_FORMS", 1024)
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("QUOTE_RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Submission journal is kept in memory.")
	}

	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	cfg.ExchangeAPIBaseURL = strings.TrimRight(viper.GetString("EXCHANGE_API_BASE_URL"), "/")
	if cfg.ExchangeAPIBaseURL == "" {
		return nil, fmt.Errorf("EXCHANGE_API_BASE_URL must be set")
	}
	cfg.ExchangeAPITimeout = durationOrDefault("EXCHANGE_API_TIMEOUT", 10*time.Second)

	cfg.SessionJWTSecret = viper.GetString("SESSION_JWT_SECRET")
	if cfg.SessionJWTSecret == "" && cfg.IsProduction {
		return nil, fmt.Errorf("SESSION_JWT_SECRET must be set in production")
	}
	cfg.SessionCookieName = viper.GetString("SESSION_COOKIE_NAME")
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "token"
		log.Printf("Warning: SESSION_COOKIE_NAME not set. Defaulting to %s.\n", cfg.SessionCookieName)
	}
	cfg.SessionExpiry = durationOrDefault("SESSION_EXPIRY", 7*24*time.Hour)

	cfg.RatesStaleTime = durationOrDefault("RATES_STALE_TIME", 55*time.Second)
	cfg.RatesRefetchInterval = durationOrDefault("RATES_REFETCH_INTERVAL", 60*time.Second)
	cfg.WalletsStaleTime = durationOrDefault("WALLETS_STALE_TIME", 5*time.Minute)
	cfg.OrdersStaleTime = durationOrDefault("ORDERS_STALE_TIME", 60*time.Second)
	cfg.QuoteStaleTime = durationOrDefault("QUOTE_STALE_TIME", 30*time.Second)
	cfg.CacheGCTime = durationOrDefault("CACHE_GC_TIME", 10*time.Minute)
	cfg.CacheMaxEntries = viper.GetInt("CACHE_MAX_ENTRIES")
	cfg.QueryRetryCount = viper.GetInt("QUERY_RETRY_COUNT")
	if cfg.QueryRetryCount < 0 {
		log.Printf("Warning: Invalid value for QUERY_RETRY_COUNT (%d). Defaulting to 2.\n", cfg.QueryRetryCount)
		cfg.QueryRetryCount = 2
	}

	cfg.QuoteDebounce = durationOrDefault("QUOTE_DEBOUNCE", 300*time.Millisecond)
	cfg.DeskIdleTimeout = durationOrDefault("DESK_IDLE_TIMEOUT", 30*time.Minute)
	cfg.DeskMaxForms = viper.GetInt("DESK_MAX_FORMS")

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.QuoteRateLimit = viper.GetString("QUOTE_RATE_LIMIT")

	return cfg, nil
}

// durationOrDefault parses key with time.ParseDuration, falling back to def with a warning.
func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
