// Package health aggregates readiness checks for the portal's backing
// services: the snapshot database, Redis and the assistant backend.
package health

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Checker reports the health of the service.
type Checker interface {
	Check(ctx context.Context) Status
}

// CheckFunc performs a single check and returns an error if it fails.
type CheckFunc func(ctx context.Context) error

// Status is the aggregated result.
type Status struct {
	Healthy   bool                   `json:"healthy"`
	Ready     bool                   `json:"ready"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
	// Optional checks do not make the service unready when they fail.
	Optional bool `json:"optional,omitempty"`
}

type registered struct {
	fn       CheckFunc
	optional bool
}

// Composite runs all registered checks in parallel.
type Composite struct {
	mu        sync.RWMutex
	checks    map[string]registered
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewComposite creates a new Composite.
func NewComposite(version string) *Composite {
	return &Composite{
		checks:    make(map[string]registered),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the timeout for individual checks.
func (c *Composite) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Add registers a required check.
func (c *Composite) Add(name string, check CheckFunc) {
	c.add(name, check, false)
}

// AddOptional registers a check whose failure degrades but does not
// fail readiness. Redis is optional: the portal falls back to the store.
func (c *Composite) AddOptional(name string, check CheckFunc) {
	c.add(name, check, true)
}

func (c *Composite) add(name string, check CheckFunc, optional bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registered{fn: check, optional: optional}
}

// Check runs every check and aggregates the results.
func (c *Composite) Check(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]registered, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := Status{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check.fn(checkCtx)
			result := CheckResult{
				Healthy:  err == nil,
				Message:  "OK",
				Duration: time.Since(start).Round(time.Millisecond).String(),
				Optional: check.optional,
			}
			if err != nil {
				result.Message = err.Error()
			}

			mu.Lock()
			status.Checks[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	var failed []string
	for name, r := range status.Checks {
		if r.Healthy {
			continue
		}
		failed = append(failed, name)
		if !r.Optional {
			status.Healthy = false
			status.Ready = false
		}
	}
	sort.Strings(failed)

	switch {
	case len(failed) == 0:
		status.Message = "All checks passed"
	case status.Healthy:
		status.Message = "Degraded: " + strings.Join(failed, ", ")
	default:
		status.Message = "Some checks failed: " + strings.Join(failed, ", ")
	}
	return status
}

// Pinger is anything with a Ping method: the postgres connection and
// the Redis cache both qualify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}
