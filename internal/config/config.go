package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogRemote   = "remote"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	// Session state TTL in hours, both in memory and in Redis (default: 7 days)
	SessionTTL int `env:"SESSION_TTL_HOURS" envDefault:"168"`

	// Catalog
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	CatalogFile   string `env:"CATALOG_FILE"`
	CatalogURL    string `env:"CATALOG_URL"`

	// URL synchronization
	URLSyncDebounceMS int    `env:"URL_SYNC_DEBOUNCE_MS" envDefault:"300"`
	SearchPath        string `env:"SEARCH_PATH" envDefault:"/search"`

	// Reviews
	ReviewSeedDemo    bool    `env:"REVIEW_SEED_DEMO" envDefault:"true"`
	ReviewSubmitRPS   float64 `env:"REVIEW_SUBMIT_RPS" envDefault:"0.2"`
	ReviewSubmitBurst int     `env:"REVIEW_SUBMIT_BURST" envDefault:"3"`

	// Kafka (optional; events are dropped when empty)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and an optional .env
// file in the working directory.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SessionTTLDuration returns the session TTL as a duration.
func (c *Config) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Hour
}

// URLSyncDebounce returns the outbound URL update quiet period.
func (c *Config) URLSyncDebounce() time.Duration {
	return time.Duration(c.URLSyncDebounceMS) * time.Millisecond
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains([]string{StorageMemory, StorageRedis}, c.StorageBackend) {
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageBackend)
	}
	if c.StorageBackend == StorageRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis backend")
	}
	if c.SessionTTL < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTL)
	}
	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("CATALOG_FILE is required when CATALOG_SOURCE is %q", CatalogFile)
		}
	case CatalogRemote:
		if c.CatalogURL == "" {
			return fmt.Errorf("CATALOG_URL is required when CATALOG_SOURCE is %q", CatalogRemote)
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.URLSyncDebounceMS < 0 {
		return fmt.Errorf("URL_SYNC_DEBOUNCE_MS must not be negative, got %d", c.URLSyncDebounceMS)
	}
	if c.ReviewSubmitRPS <= 0 || c.ReviewSubmitBurst < 1 {
		return fmt.Errorf("REVIEW_SUBMIT_RPS and REVIEW_SUBMIT_BURST must be positive")
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
