package pubfront

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/eringen/pubfront/api"
	"github.com/eringen/pubfront/logger"
)

// SiteConfig holds all configuration for a pubfront site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string `validate:"required,url"` // Canonical website URL, no trailing slash
	Description string // Default meta description

	Addr       string        // Listen address (default ":3000")
	APIURL     string        `validate:"required,url"` // Remote blog API root
	APITimeout time.Duration // 0 keeps the transport default

	RelatedLimit int `validate:"gte=1,lte=50"`  // Related articles on the article page (default 6)
	PageSize     int `validate:"gte=1,lte=100"` // Articles per listing page (default 9)
	FeedSize     int `validate:"gte=1,lte=500"` // Articles in feed and sitemap (default 50)

	CacheTTL    time.Duration // Feed/sitemap listing cache TTL (default 5m)
	RedisURL    string        // Optional; in-memory cache when empty
	RedisPrefix string        // Key prefix (default "pubfront:")

	SessionSecret string `validate:"required,min=32"` // Credential cookie signing key
	CookieSecure  bool   // Set true for HTTPS

	LogLevel  string
	LogOutput string // "stderr" (default), "stdout" or a file path
	LogPretty bool
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.RelatedLimit == 0 {
		c.RelatedLimit = 6
	}
	if c.PageSize == 0 {
		c.PageSize = 9
	}
	if c.FeedSize == 0 {
		c.FeedSize = 50
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = "pubfront:"
	}
}

// Validate checks required fields and ranges.
func (c SiteConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("pubfront: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads configuration from the environment, after loading a
// .env file when one exists.
func LoadConfig() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("load .env")
	}

	cfg := SiteConfig{
		Name:          EnvOr("SITE_NAME", ""),
		URL:           EnvOr("WEBSITE_URL", ""),
		Description:   EnvOr("SITE_DESCRIPTION", ""),
		Addr:          EnvOr("ADDR", ""),
		APIURL:        EnvOr("API_URL", ""),
		APITimeout:    envDuration("API_TIMEOUT", 0),
		RelatedLimit:  envInt("LIMIT_PAGE_ARTICLES_RELATED", 0),
		PageSize:      envInt("LIMIT_PAGE_ARTICLES", 0),
		FeedSize:      envInt("FEED_SIZE", 0),
		CacheTTL:      envDuration("CACHE_TTL", 0),
		RedisURL:      EnvOr("REDIS_URL", ""),
		RedisPrefix:   EnvOr("REDIS_PREFIX", ""),
		SessionSecret: EnvOr("SESSION_SECRET", ""),
		CookieSecure:  envBool("COOKIE_SECURE", false),
		LogLevel:      EnvOr("LOG_LEVEL", "info"),
		LogOutput:     EnvOr("LOG_OUTPUT", "stderr"),
		LogPretty:     envBool("LOG_PRETTY", false),
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory served under /public (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithCacheBackend replaces the listing cache backend.
func WithCacheBackend(b CacheBackend) Option {
	return func(a *App) {
		a.cacheBackend = b
	}
}

// WithAPIConfig overrides the fetch configuration derived from SiteConfig.
// An OnError in cfg runs before the App's own fetch error policy.
func WithAPIConfig(cfg api.Config) Option {
	return func(a *App) {
		a.apiConfig = &cfg
	}
}
