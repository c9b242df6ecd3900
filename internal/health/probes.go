package health

import (
	"context"
	"sync/atomic"
	"time"
)

// ProbeManager adds startup and shutdown state to a Manager for Kubernetes-style
// probes
type ProbeManager struct {
	*Manager

	startTime   time.Time
	initialized atomic.Bool
	inShutdown  atomic.Bool
	version     string
}

// NewProbeManager creates a ProbeManager reporting version
func NewProbeManager(version string) *ProbeManager {
	return &ProbeManager{
		Manager:   NewManager(),
		startTime: time.Now(),
		version:   version,
	}
}

// MarkInitialized lets the startup probe pass
func (pm *ProbeManager) MarkInitialized() {
	pm.initialized.Store(true)
}

// MarkShutdown makes the readiness probe fail so traffic drains
func (pm *ProbeManager) MarkShutdown() {
	pm.inShutdown.Store(true)
}

func (pm *ProbeManager) IsInitialized() bool {
	return pm.initialized.Load()
}

func (pm *ProbeManager) IsShuttingDown() bool {
	return pm.inShutdown.Load()
}

func (pm *ProbeManager) Uptime() time.Duration {
	return time.Since(pm.startTime)
}

func (pm *ProbeManager) Version() string {
	return pm.version
}

// ProbeResult is the JSON body of a probe endpoint
type ProbeResult struct {
	Status    Status             `json:"status"`
	Version   string             `json:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func (pm *ProbeManager) result(status Status, checks map[string]*Result) *ProbeResult {
	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    checks,
		Timestamp: time.Now(),
	}
}

// CheckLiveness never runs dependency checks. A server that is shutting down is
// still alive, only degraded.
func (pm *ProbeManager) CheckLiveness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.result(StatusDegraded, nil)
	}
	return pm.result(StatusHealthy, nil)
}

// CheckReadiness runs every checker unless the server is shutting down
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.result(StatusUnhealthy, nil)
	}
	checks := pm.Manager.Check(ctx)
	return pm.result(pm.Manager.OverallStatus(checks), checks)
}

// CheckStartup passes once MarkInitialized has been called
func (pm *ProbeManager) CheckStartup(ctx context.Context) *ProbeResult {
	if pm.IsInitialized() {
		return pm.result(StatusHealthy, nil)
	}
	return pm.result(StatusUnhealthy, nil)
}
