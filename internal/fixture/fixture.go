// Package fixture runs named data loaders ("fixtures") individually or as
// ordered suites described in YAML.
package fixture

import (
	"context"
	"sync/atomic"
)

// Fixture loads one kind of record. Load must validate options before it
// touches any collaborator.
type Fixture interface {
	Name() string
	Load(ctx context.Context, opts Options) error
}

type statsKey struct{}

// Stats collects counters reported by a fixture while it runs.
type Stats struct {
	loaded atomic.Int64
}

// Loaded returns the number of records reported through RecordLoaded.
func (s *Stats) Loaded() int64 {
	return s.loaded.Load()
}

// WithStats returns a context that RecordLoaded reports into.
func WithStats(ctx context.Context, s *Stats) context.Context {
	return context.WithValue(ctx, statsKey{}, s)
}

// RecordLoaded adds n persisted records to the stats carried by ctx, if any.
func RecordLoaded(ctx context.Context, n int) {
	if s, ok := ctx.Value(statsKey{}).(*Stats); ok {
		s.loaded.Add(int64(n))
	}
}
