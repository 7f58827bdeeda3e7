package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalog-fixtures/internal/catalog"
	"github.com/utafrali/catalog-fixtures/internal/config"
	"github.com/utafrali/catalog-fixtures/internal/event"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	"github.com/utafrali/catalog-fixtures/internal/repository"
	"github.com/utafrali/catalog-fixtures/internal/repository/api"
	"github.com/utafrali/catalog-fixtures/internal/repository/postgres"
	"github.com/utafrali/catalog-fixtures/migrations"
	"github.com/utafrali/catalog-fixtures/pkg/database"
	"github.com/utafrali/catalog-fixtures/pkg/health"
	"github.com/utafrali/catalog-fixtures/pkg/httpclient"
	pkgkafka "github.com/utafrali/catalog-fixtures/pkg/kafka"
	"github.com/utafrali/catalog-fixtures/pkg/tracing"
)

const (
	serviceName = "catalog-fixtures"
	lockPrefix  = "catalog-fixtures:lock:"
)

// App wires together all dependencies of a fixtures run.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	registry       *fixture.Registry
	runner         *fixture.Runner
	metrics        *prometheus.Registry
	tracerShutdown func(context.Context) error
}

// dependencies are the stores and publishers the catalog fixtures load through.
type dependencies struct {
	db       database.DBTX
	products repository.ProductRepository
	events   catalog.ProductEventPublisher
	random   catalog.RandomProvider
}

// NewApp connects to every configured backend and registers the catalog
// fixtures. Backends acquired before a failure are released again.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger, metrics: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.Shutdown()
		}
	}()

	// Initialize OpenTelemetry tracing.
	a.tracerShutdown, err = tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RegisterPoolMetrics(a.metrics, a.pool, serviceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	deps := dependencies{
		db:     a.pool,
		random: catalog.NewFakerRandom(cfg.RandomSeed),
	}

	// Product store: the database directly or the catalog HTTP API.
	if cfg.ProductLoader == config.ProductLoaderHTTP {
		if err := httpclient.RegisterMetrics(a.metrics); err != nil {
			return nil, fmt.Errorf("register circuit breaker metrics: %w", err)
		}
		client := httpclient.NewCircuitBreakerClient(httpclient.New(cfg.HTTPClient()), cfg.CircuitBreaker(), logger)
		deps.products = api.NewProductRepository(client, cfg.ProductServiceURL, cfg.ProductServiceToken, logger)
		logger.Info("products are created through the catalog API", slog.String("url", cfg.ProductServiceURL))
	}

	// Initialize Kafka producer with connection validation and retry.
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := pingKafkaWithRetry(ctx, a.producer, logger); err != nil {
			logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		deps.events = event.NewProducer(a.producer, logger)
	}

	// Run lock.
	var locker fixture.Locker = fixture.NopLocker{}
	if cfg.LockEnabled() {
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		locker = fixture.NewRedisLocker(a.redis, lockPrefix)
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	a.registry, err = newRegistry(deps, logger)
	if err != nil {
		return nil, err
	}
	a.runner = fixture.NewRunner(a.registry, fixture.RunnerConfig{
		Locker:  locker,
		LockKey: cfg.PostgresDB,
		LockTTL: time.Duration(cfg.LockTTLSeconds) * time.Second,
		Metrics: fixture.NewMetrics(a.metrics),
	}, logger)

	return a, nil
}

// newRegistry registers every catalog fixture. A nil products store selects
// the PostgreSQL one.
func newRegistry(deps dependencies, logger *slog.Logger) (*fixture.Registry, error) {
	taxonRepo := postgres.NewTaxonRepository(deps.db)
	attributeRepo := postgres.NewAttributeRepository(deps.db)
	optionRepo := postgres.NewOptionRepository(deps.db)
	archetypeRepo := postgres.NewArchetypeRepository(deps.db)
	products := deps.products
	if products == nil {
		products = postgres.NewProductRepository(deps.db)
	}

	taxons := catalog.NewTaxonFixture(taxonRepo, logger)
	attributes := catalog.NewAttributeFixture(attributeRepo, logger)
	options := catalog.NewOptionFixture(optionRepo, logger)
	archetypes := catalog.NewArchetypeFixture(archetypeRepo, attributeRepo, optionRepo, logger)
	productFixture := catalog.NewProductFixture(products, deps.events, logger)
	tshirts := catalog.NewTshirtProductFixture(
		taxons, taxonRepo, attributes, options, archetypes, productFixture, deps.random, logger,
	)

	reg := fixture.NewRegistry()
	for _, f := range []fixture.Fixture{taxons, attributes, options, archetypes, productFixture, tshirts} {
		if err := reg.Register(f); err != nil {
			return nil, fmt.Errorf("register fixture: %w", err)
		}
	}
	return reg, nil
}

// FixtureNames lists the fixtures an App registers without connecting to
// any backend.
func FixtureNames(logger *slog.Logger) ([]string, error) {
	reg, err := newRegistry(dependencies{}, logger)
	if err != nil {
		return nil, err
	}
	return reg.Names(), nil
}

// LoadSuite runs the named suite from the suites file at path.
func (a *App) LoadSuite(ctx context.Context, path, name string) error {
	suites, err := fixture.LoadSuites(path)
	if err != nil {
		return err
	}
	suite, err := suites.Get(name)
	if err != nil {
		return err
	}

	err = a.runner.Run(ctx, suite)
	a.pushMetrics(ctx)
	return err
}

// RunFixture runs a single fixture.
func (a *App) RunFixture(ctx context.Context, name string, opts fixture.Options) error {
	err := a.runner.RunFixture(ctx, name, opts)
	a.pushMetrics(ctx)
	return err
}

// Check dials every configured backend with a short-lived connection and
// reports its state. It needs no App, so a backend NewApp cannot reach is
// reported down instead of aborting the check. PostgreSQL and the Redis lock
// are critical, Kafka only degrades a run.
func Check(ctx context.Context, cfg *config.Config, logger *slog.Logger) health.Report {
	checks := health.New(5 * time.Second)

	pgCfg := cfg.Postgres()
	checks.RegisterCritical("postgres", func(ctx context.Context) error {
		conn, err := pgx.Connect(ctx, pgCfg.DSN())
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer func() { _ = conn.Close(context.WithoutCancel(ctx)) }()
		return conn.Ping(ctx)
	})

	if cfg.LockEnabled() {
		checks.RegisterCritical("redis", func(ctx context.Context) error {
			client, err := database.NewRedisClient(ctx, cfg.Redis())
			if err != nil {
				return err
			}
			return client.Close()
		})
	}

	if cfg.KafkaEnabled {
		checks.RegisterNonCritical("kafka", func(ctx context.Context) error {
			producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
			defer func() { _ = producer.Close() }()
			return producer.Ping(ctx)
		})
	}

	report := checks.Run(ctx)
	logger.InfoContext(ctx, "backend check finished", slog.String("status", string(report.Status)))
	return report
}

// pushMetrics hands the run's metrics to the Pushgateway, when configured.
// A failed push is logged only.
func (a *App) pushMetrics(ctx context.Context) {
	if a.cfg.PushgatewayURL == "" {
		return
	}
	if err := fixture.Push(a.cfg.PushgatewayURL, serviceName, a.metrics); err != nil {
		a.logger.WarnContext(ctx, "failed to push metrics", slog.String("error", err.Error()))
	}
}

// Shutdown releases all components in the correct order:
// 1. Tracer (flush pending spans)
// 2. Kafka producer
// 3. Redis client
// 4. PostgreSQL pool
func (a *App) Shutdown() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errors.Join(errs...)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s with ±25% jitter between them).
func pingKafkaWithRetry(ctx context.Context, producer pinger, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := producer.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
