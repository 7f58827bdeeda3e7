package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/catalog-fixtures/pkg/logger"
	"github.com/utafrali/catalog-fixtures/pkg/tracing"
)

const tracerName = "github.com/utafrali/catalog-fixtures/internal/fixture"

// DefaultLockTTL bounds how long a crashed run can block the next one.
const DefaultLockTTL = 10 * time.Minute

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Locker  Locker
	LockKey string
	LockTTL time.Duration
	Metrics *Metrics
}

// Runner executes fixtures from a Registry.
type Runner struct {
	registry *Registry
	locker   Locker
	lockKey  string
	lockTTL  time.Duration
	metrics  *Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewRunner creates a Runner. A nil Locker runs without locking.
func NewRunner(registry *Registry, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.Locker == nil {
		cfg.Locker = NopLocker{}
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "run"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	return &Runner{
		registry: registry,
		locker:   cfg.Locker,
		lockKey:  cfg.LockKey,
		lockTTL:  cfg.LockTTL,
		metrics:  cfg.Metrics,
		tracer:   tracing.Tracer(tracerName),
		logger:   logger,
	}
}

// Run executes every entry of suite in order. Unknown fixtures are reported
// before anything runs. The first failing fixture stops the run; records
// loaded by earlier fixtures are kept.
func (r *Runner) Run(ctx context.Context, suite Suite) error {
	if err := suite.Validate(r.registry); err != nil {
		return err
	}

	return r.locked(ctx, func(ctx context.Context) error {
		ctx, span := r.tracer.Start(ctx, "fixture.suite",
			trace.WithAttributes(
				attribute.String("suite", suite.Name),
				attribute.Int("fixtures", len(suite.Entries)),
			),
		)
		defer span.End()

		log := logger.WithContext(ctx, r.logger).With(slog.String("suite", suite.Name))
		log.InfoContext(ctx, "suite started", slog.Int("fixtures", len(suite.Entries)))
		start := time.Now()

		for _, e := range suite.Entries {
			if err := r.runEntry(ctx, e.Fixture, e.Options); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				log.ErrorContext(ctx, "suite aborted",
					slog.String("fixture", e.Fixture),
					slog.String("error", err.Error()),
				)
				return fmt.Errorf("suite %s: %w", suite.Name, err)
			}
		}

		log.InfoContext(ctx, "suite finished", slog.Duration("duration", time.Since(start)))
		return nil
	})
}

// RunFixture executes a single registered fixture.
func (r *Runner) RunFixture(ctx context.Context, name string, opts Options) error {
	if _, err := r.registry.Get(name); err != nil {
		return err
	}
	return r.locked(ctx, func(ctx context.Context) error {
		return r.runEntry(ctx, name, opts)
	})
}

func (r *Runner) locked(ctx context.Context, fn func(context.Context) error) (err error) {
	if logger.RunIDFromContext(ctx) == "" {
		ctx = logger.WithRunID(ctx, uuid.New().String())
	}

	release, err := r.locker.Acquire(ctx, r.lockKey, r.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		// The run may have been canceled; releasing must still reach Redis.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := release(releaseCtx); rerr != nil {
			r.logger.WarnContext(ctx, "failed to release fixture lock", slog.String("error", rerr.Error()))
			err = errors.Join(err, rerr)
		}
	}()

	return fn(ctx)
}

func (r *Runner) runEntry(ctx context.Context, name string, opts Options) (err error) {
	f, err := r.registry.Get(name)
	if err != nil {
		return err
	}

	ctx = logger.WithFixture(ctx, name)
	ctx, span := r.tracer.Start(ctx, "fixture.load", trace.WithAttributes(attribute.String("fixture", name)))
	defer span.End()

	stats := &Stats{}
	ctx = WithStats(ctx, stats)

	log := logger.WithContext(ctx, r.logger)
	log.InfoContext(ctx, "fixture started")
	start := time.Now()

	err = f.Load(ctx, opts)
	elapsed := time.Since(start)
	r.metrics.observe(name, err, stats.Loaded(), elapsed)
	span.SetAttributes(attribute.Int64("records_loaded", stats.Loaded()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorContext(ctx, "fixture failed",
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("fixture %s: %w", name, err)
	}

	log.InfoContext(ctx, "fixture finished",
		slog.Int64("records_loaded", stats.Loaded()),
		slog.Duration("duration", elapsed),
	)
	return nil
}
