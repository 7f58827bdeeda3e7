package health

import (
	"context"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Report is the outcome of running every registered check.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
	Latency  string `json:"latency"`
}

type registration struct {
	check    Checker
	critical bool
}

// Checks runs dependency checks before a fixtures run. A failing critical
// check reports StatusDown, a failing non-critical one StatusDegraded.
type Checks struct {
	mu      sync.RWMutex
	checks  map[string]registration
	timeout time.Duration
}

// New creates an empty set of checks. Each check gets at most timeout.
func New(timeout time.Duration) *Checks {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checks{checks: make(map[string]registration), timeout: timeout}
}

// RegisterCritical adds a check the run cannot do without.
func (c *Checks) RegisterCritical(name string, checker Checker) {
	c.register(name, checker, true)
}

// RegisterNonCritical adds a check whose failure only degrades the run.
func (c *Checks) RegisterNonCritical(name string, checker Checker) {
	c.register(name, checker, false)
}

func (c *Checks) register(name string, checker Checker, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registration{check: checker, critical: critical}
}

// Run executes all checks concurrently.
func (c *Checks) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.RLock()
	checks := make(map[string]registration, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
	)
	for name, reg := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res := CheckResult{Status: StatusUp, Critical: reg.critical}
			if err := reg.check(ctx); err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			res.Latency = time.Since(start).String()

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Report{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}
