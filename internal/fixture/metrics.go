package fixture

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run statuses used as the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the per-fixture Prometheus collectors.
type Metrics struct {
	// Runs counts fixture executions by outcome.
	Runs *prometheus.CounterVec

	// RecordsLoaded counts records reported through RecordLoaded.
	RecordsLoaded *prometheus.CounterVec

	// Duration observes how long each fixture took.
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the fixture collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fixture_runs_total",
				Help: "Total number of fixture executions by outcome",
			},
			[]string{"fixture", "status"},
		),
		RecordsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fixture_records_loaded_total",
				Help: "Total number of records persisted by fixtures",
			},
			[]string{"fixture"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fixture_run_duration_seconds",
				Help:    "Duration of fixture executions in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"fixture"},
		),
	}
}

func (m *Metrics) observe(fixture string, err error, loaded int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.Runs.WithLabelValues(fixture, status).Inc()
	m.RecordsLoaded.WithLabelValues(fixture).Add(float64(loaded))
	m.Duration.WithLabelValues(fixture).Observe(elapsed.Seconds())
}

// Push sends everything gathered by g to a Prometheus Pushgateway under the
// given job, replacing previous pushes of that job.
func Push(url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
