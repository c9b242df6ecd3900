// Package health runs dependency checks for the readiness probe.
//
// Checkers verify one dependency each: the session store, the forms API, or the
// forms directory. A ProbeManager aggregates them into liveness, readiness and
// startup probe results served by internal/server.
//
//	pm := health.NewProbeManager(version.Version)
//	pm.AddChecker(health.NewPingChecker("session-store", store))
//	pm.AddChecker(health.NewDirChecker("forms-dir", "forms"))
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checker verifies a single dependency
type Checker interface {
	// Name is a lowercase, hyphenated identifier such as "session-store"
	Name() string

	// Check must respect the context deadline
	Check(ctx context.Context) *Result
}

// Status represents the health check status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one check
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// NewResult creates a new health check result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}

// Pinger is implemented by session stores and the forms API client
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a dependency unhealthy when its Ping fails
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker named name over p
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy(fmt.Sprintf("%s unreachable", c.name)).
			WithDetail("error", err.Error())
	}
	r := Healthy(fmt.Sprintf("%s reachable", c.name))
	r.Latency = time.Since(start)
	return r
}

// DirChecker verifies the directory of form definitions for the file source.
// An existing directory without definitions is degraded.
type DirChecker struct {
	name string
	dir  string
}

// NewDirChecker creates a checker named name over dir
func NewDirChecker(name, dir string) *DirChecker {
	return &DirChecker{name: name, dir: dir}
}

func (c *DirChecker) Name() string {
	return c.name
}

func (c *DirChecker) Check(ctx context.Context) *Result {
	info, err := os.Stat(c.dir)
	if err != nil {
		return Unhealthy("forms directory not readable").
			WithDetail("dir", c.dir).
			WithDetail("error", err.Error())
	}
	if !info.IsDir() {
		return Unhealthy("forms path is not a directory").WithDetail("dir", c.dir)
	}

	matches, err := filepath.Glob(filepath.Join(c.dir, "*.yaml"))
	if err != nil {
		return Unhealthy("listing forms failed").WithDetail("error", err.Error())
	}
	if len(matches) == 0 {
		return Degraded("no form definitions found").
			WithDetail("dir", c.dir).
			WithDetail("form_count", 0)
	}
	return Healthy("form definitions available").
		WithDetail("dir", c.dir).
		WithDetail("form_count", len(matches))
}
