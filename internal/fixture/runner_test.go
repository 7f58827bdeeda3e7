package fixture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder registers fixtures that append their name to calls when loaded.
type recorder struct {
	calls []string
	reg   *Registry
}

func newRecorder(t *testing.T, names ...string) *recorder {
	t.Helper()
	r := &recorder{reg: NewRegistry()}
	for _, n := range names {
		name := n
		require.NoError(t, r.reg.Register(&funcFixture{name: name, load: func(ctx context.Context, _ Options) error {
			r.calls = append(r.calls, name)
			RecordLoaded(ctx, 2)
			return nil
		}}))
	}
	return r
}

type stubLocker struct {
	acquired int
	released int
	err      error
}

func (l *stubLocker) Acquire(context.Context, string, time.Duration) (ReleaseFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestRunner_RunInOrder(t *testing.T) {
	rec := newRecorder(t, "taxon", "product_attribute", "tshirt_product")
	metrics := NewMetrics(prometheus.NewRegistry())
	locker := &stubLocker{}
	runner := NewRunner(rec.reg, RunnerConfig{Locker: locker, Metrics: metrics}, testLogger())

	suite := Suite{Name: "default", Entries: []Entry{
		{Fixture: "taxon"}, {Fixture: "product_attribute"}, {Fixture: "tshirt_product"},
	}}
	require.NoError(t, runner.Run(context.Background(), suite))

	assert.Equal(t, []string{"taxon", "product_attribute", "tshirt_product"}, rec.calls)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("taxon", StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RecordsLoaded.WithLabelValues("tshirt_product")))
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	rec := newRecorder(t, "taxon", "tshirt_product")
	boom := errors.New("boom")
	require.NoError(t, rec.reg.Register(&funcFixture{name: "product_option", load: func(context.Context, Options) error {
		rec.calls = append(rec.calls, "product_option")
		return boom
	}}))
	metrics := NewMetrics(prometheus.NewRegistry())
	locker := &stubLocker{}
	runner := NewRunner(rec.reg, RunnerConfig{Locker: locker, Metrics: metrics}, testLogger())

	suite := Suite{Name: "default", Entries: []Entry{
		{Fixture: "taxon"}, {Fixture: "product_option"}, {Fixture: "tshirt_product"},
	}}
	err := runner.Run(context.Background(), suite)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fixture product_option")
	assert.Equal(t, []string{"taxon", "product_option"}, rec.calls)
	assert.Equal(t, 1, locker.released)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("product_option", StatusFailure)))
}

func TestRunner_UnknownFixtureRunsNothing(t *testing.T) {
	rec := newRecorder(t, "taxon")
	locker := &stubLocker{}
	runner := NewRunner(rec.reg, RunnerConfig{Locker: locker}, testLogger())

	err := runner.Run(context.Background(), Suite{Name: "default", Entries: []Entry{
		{Fixture: "taxon"}, {Fixture: "missing"},
	}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
	assert.Empty(t, rec.calls)
	assert.Zero(t, locker.acquired)
}

func TestRunner_LockHeld(t *testing.T) {
	rec := newRecorder(t, "taxon")
	locker := &stubLocker{err: apperrors.Conflict("held")}
	runner := NewRunner(rec.reg, RunnerConfig{Locker: locker}, testLogger())

	err := runner.Run(context.Background(), Suite{Name: "default", Entries: []Entry{{Fixture: "taxon"}}})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Empty(t, rec.calls)
}

func TestRunner_RunFixture(t *testing.T) {
	var gotOpts amountOptions
	var gotRunID, gotFixture string
	reg := NewRegistry()
	require.NoError(t, reg.Register(&funcFixture{name: "tshirt_product", load: func(ctx context.Context, opts Options) error {
		gotRunID = logger.RunIDFromContext(ctx)
		gotFixture = logger.FixtureFromContext(ctx)
		return opts.Decode(&gotOpts)
	}}))
	runner := NewRunner(reg, RunnerConfig{}, testLogger())

	require.NoError(t, runner.RunFixture(context.Background(), "tshirt_product", MustOptions(map[string]any{"amount": 4})))
	assert.Equal(t, 4, *gotOpts.Amount)
	assert.NotEmpty(t, gotRunID)
	assert.Equal(t, "tshirt_product", gotFixture)

	err := runner.RunFixture(context.Background(), "nope", Options{})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRunner_Spans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	rec := newRecorder(t, "taxon")
	runner := NewRunner(rec.reg, RunnerConfig{}, testLogger())
	require.NoError(t, runner.Run(context.Background(), Suite{Name: "default", Entries: []Entry{{Fixture: "taxon"}}}))

	var names []string
	for _, s := range exp.GetSpans() {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"fixture.load", "fixture.suite"}, names)
}

func TestRecordLoaded_WithoutStats(t *testing.T) {
	assert.NotPanics(t, func() { RecordLoaded(context.Background(), 3) })
}
