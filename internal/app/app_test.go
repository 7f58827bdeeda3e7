package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog-fixtures/internal/config"
	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	"github.com/utafrali/catalog-fixtures/pkg/database"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/health"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubProducts struct {
	mu      sync.Mutex
	created []domain.Product
}

func (s *stubProducts) CreateProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, products...)
	return nil
}

type stubPinger struct {
	calls int
	err   error
}

func (p *stubPinger) Ping(context.Context) error {
	p.calls++
	return p.err
}

func TestFixtureNames(t *testing.T) {
	names, err := FixtureNames(testLogger())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"product", "product_archetype", "product_attribute", "product_option", "taxon", "tshirt_product",
	}, names)
}

// newTestApp builds an App around a mocked database and an in-memory
// product store.
func newTestApp(t *testing.T, cfg *config.Config) (*App, *stubProducts) {
	t.Helper()
	pool, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	products := &stubProducts{}
	reg, err := newRegistry(dependencies{db: pool, products: products}, testLogger())
	require.NoError(t, err)

	metrics := prometheus.NewRegistry()
	a := &App{
		cfg:      cfg,
		logger:   testLogger(),
		registry: reg,
		metrics:  metrics,
		runner:   fixture.NewRunner(reg, fixture.RunnerConfig{Metrics: fixture.NewMetrics(metrics)}, testLogger()),
	}
	return a, products
}

func writeSuites(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const productSuite = `
suites:
  default:
    fixtures:
      product:
        options:
          custom:
            - name: Mug
              code: MUG
            - name: Poster
`

func TestApp_LoadSuite_PushesMetrics(t *testing.T) {
	var pushes atomic.Int32
	var path atomic.Value
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushes.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	a, products := newTestApp(t, &config.Config{PushgatewayURL: gateway.URL})

	err := a.LoadSuite(context.Background(), writeSuites(t, productSuite), "default")

	require.NoError(t, err)
	require.Len(t, products.created, 2)
	assert.Equal(t, "MUG", products.created[0].Code)
	assert.Equal(t, "poster", products.created[1].Slug)
	assert.Equal(t, int32(1), pushes.Load())
	assert.Equal(t, "/metrics/job/catalog-fixtures", path.Load())
}

func TestApp_LoadSuite_UnknownSuite(t *testing.T) {
	a, products := newTestApp(t, &config.Config{})

	err := a.LoadSuite(context.Background(), writeSuites(t, productSuite), "demo")

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, products.created)
}

func TestApp_LoadSuite_MissingFile(t *testing.T) {
	a, _ := newTestApp(t, &config.Config{})

	err := a.LoadSuite(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), "default")

	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
}

func TestApp_RunFixture_InvalidOptionsFailBeforeAnyQuery(t *testing.T) {
	a, products := newTestApp(t, &config.Config{})

	err := a.RunFixture(context.Background(), "tshirt_product", fixture.MustOptions(map[string]any{"amount": -1}))

	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
	assert.Empty(t, products.created)
}

func TestApp_PushFailureIsNotFatal(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	a, products := newTestApp(t, &config.Config{PushgatewayURL: gateway.URL})

	err := a.RunFixture(context.Background(), "product", fixture.MustOptions(map[string]any{
		"custom": []map[string]any{{"name": "Mug"}},
	}))

	require.NoError(t, err)
	assert.Len(t, products.created, 1)
}

func TestPingKafkaWithRetry_FirstAttempt(t *testing.T) {
	p := &stubPinger{}

	require.NoError(t, pingKafkaWithRetry(context.Background(), p, testLogger()))
	assert.Equal(t, 1, p.calls)
}

func TestPingKafkaWithRetry_CanceledDuringBackoff(t *testing.T) {
	p := &stubPinger{err: errors.New("no brokers")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pingKafkaWithRetry(ctx, p, testLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls)
}

func TestShutdown_PartiallyInitialized(t *testing.T) {
	a := &App{logger: testLogger()}
	assert.NoError(t, a.Shutdown())
}

func TestCheck_UnreachablePostgresIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	redisPort, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		PostgresHost: "127.0.0.1",
		PostgresPort: 1,
		PostgresUser: "fixtures",
		PostgresDB:   "catalog_db",
		PostgresSSL:  "disable",
		RedisHost:    mr.Host(),
		RedisPort:    redisPort,
	}

	report := Check(context.Background(), cfg, testLogger())

	assert.Equal(t, health.StatusDown, report.Status)
	require.Contains(t, report.Checks, "postgres")
	assert.Equal(t, health.StatusDown, report.Checks["postgres"].Status)
	assert.True(t, report.Checks["postgres"].Critical)
	assert.NotEmpty(t, report.Checks["postgres"].Error)
	require.Contains(t, report.Checks, "redis")
	assert.Equal(t, health.StatusUp, report.Checks["redis"].Status)
	assert.NotContains(t, report.Checks, "kafka")
}

func TestCheck_UnreachableRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	redisPort, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	cfg := &config.Config{
		PostgresHost: "127.0.0.1",
		PostgresPort: 1,
		PostgresUser: "fixtures",
		PostgresSSL:  "disable",
		RedisHost:    "127.0.0.1",
		RedisPort:    redisPort,
	}

	report := Check(context.Background(), cfg, testLogger())

	require.Contains(t, report.Checks, "redis")
	assert.Equal(t, health.StatusDown, report.Checks["redis"].Status)
	assert.True(t, report.Checks["redis"].Critical)
}
