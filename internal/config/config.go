package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/catalog-fixtures/pkg/config"
	"github.com/utafrali/catalog-fixtures/pkg/database"
	"github.com/utafrali/catalog-fixtures/pkg/httpclient"
	"github.com/utafrali/catalog-fixtures/pkg/tracing"
)

// Product stores selectable with PRODUCT_LOADER.
const (
	ProductLoaderPostgres = "postgres"
	ProductLoaderHTTP     = "http"
)

// Config holds all configuration for the fixtures command.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB   string `env:"CATALOG_DB_NAME" envDefault:"catalog_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"4"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"5"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Redis run lock. An empty host disables locking.
	RedisHost      string `env:"REDIS_HOST"`
	RedisPort      int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	LockTTLSeconds int    `env:"FIXTURE_LOCK_TTL_SECONDS" envDefault:"600"`

	// Product store
	ProductLoader       string `env:"PRODUCT_LOADER" envDefault:"postgres"`
	ProductServiceURL   string `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8001"`
	ProductServiceToken string `env:"PRODUCT_SERVICE_TOKEN"`
	HTTPTimeoutSeconds  int    `env:"PRODUCT_SERVICE_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPMaxRetries      int    `env:"PRODUCT_SERVICE_MAX_RETRIES" envDefault:"3"`

	// Circuit breaker
	CBTimeoutSeconds int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio   float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests    uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	Tracing tracing.Config

	// Metrics are pushed here when a run ends. Empty disables pushing.
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`

	// Default suites file for "load".
	FixturesFile string `env:"FIXTURES_FILE" envDefault:"fixtures.yaml"`

	// Seed for generated data. Zero picks a random seed.
	RandomSeed uint64 `env:"FIXTURE_RANDOM_SEED" envDefault:"0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load fixtures config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("invalid POSTGRES_PORT: %d", c.PostgresPort)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.LockTTLSeconds <= 0 {
		return fmt.Errorf("FIXTURE_LOCK_TTL_SECONDS must be > 0, got %d", c.LockTTLSeconds)
	}
	switch c.ProductLoader {
	case ProductLoaderPostgres:
	case ProductLoaderHTTP:
		u, err := url.Parse(c.ProductServiceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("PRODUCT_SERVICE_URL must be an absolute URL, got %q", c.ProductServiceURL)
		}
	default:
		return fmt.Errorf("PRODUCT_LOADER must be %q or %q, got %q", ProductLoaderPostgres, ProductLoaderHTTP, c.ProductLoader)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %f", c.CBFailureRatio)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	return nil
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// LockEnabled reports whether suite runs take the Redis lock.
func (c *Config) LockEnabled() bool {
	return c.RedisHost != ""
}

// Redis returns the lock's Redis configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// HTTPClient returns the product service client configuration.
func (c *Config) HTTPClient() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second
	cfg.MaxRetries = c.HTTPMaxRetries
	return cfg
}

// CircuitBreaker returns the product service breaker configuration.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	cfg := httpclient.DefaultCircuitBreakerConfig("product-service")
	cfg.Timeout = time.Duration(c.CBTimeoutSeconds) * time.Second
	cfg.FailureRatio = c.CBFailureRatio
	cfg.MinRequests = c.CBMinRequests
	return cfg
}
