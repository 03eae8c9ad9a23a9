// Package health checks that the shop's dependencies answer.
package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

const defaultTimeout = 3 * time.Second

// Probe returns nil when a dependency is reachable.
type Probe func(ctx context.Context) error

// Pinger is implemented by the record stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the outcome of one readiness check.
type Report struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

func (r Report) Healthy() bool { return r.Status == "ok" }

// Names returns the dependency names in a stable order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Dependencies))
	for name := range r.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Checker runs registered probes concurrently under a shared deadline.
type Checker struct {
	mu      sync.Mutex
	probes  map[string]Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{probes: make(map[string]Probe), timeout: timeout}
}

// Register adds or replaces the probe for name.
func (c *Checker) Register(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
}

// RegisterPinger registers p.Ping under name.
func (c *Checker) RegisterPinger(name string, p Pinger) {
	c.Register(name, p.Ping)
}

// Check runs every probe and reports "degraded" if any of them fails.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	probes := make(map[string]Probe, len(c.probes))
	for name, p := range c.probes {
		probes[name] = p
	}
	c.mu.Unlock()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		deps = make(map[string]DependencyStatus, len(probes))
	)
	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := DependencyStatus{Status: "ok"}
			if err := probe(ctx); err != nil {
				st = DependencyStatus{Status: "unhealthy", Error: err.Error()}
			}
			mu.Lock()
			deps[name] = st
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := "ok"
	for _, d := range deps {
		if d.Status != "ok" {
			status = "degraded"
			break
		}
	}
	return Report{Status: status, Dependencies: deps}
}
