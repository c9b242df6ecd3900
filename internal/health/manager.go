package health

import (
	"context"
	"sync"
	"time"
)

// Manager runs checkers in parallel, each under its own timeout
type Manager struct {
	checkers []Checker
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewManager creates a Manager with a 5 second per-check timeout
func NewManager() *Manager {
	return &Manager{timeout: 5 * time.Second}
}

// WithTimeout sets the per-check timeout
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// AddChecker registers a checker
func (m *Manager) AddChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// Check runs every checker and returns the results by checker name
func (m *Manager) Check(ctx context.Context) map[string]*Result {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	timeout := m.timeout
	m.mu.RUnlock()

	results := make(map[string]*Result, len(checkers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			result := c.Check(checkCtx)
			if result.Latency == 0 {
				result.Latency = time.Since(start)
			}

			mu.Lock()
			results[c.Name()] = result
			mu.Unlock()
		}(checker)
	}
	wg.Wait()
	return results
}

// OverallStatus is unhealthy if any result is, else degraded if any result is
func (m *Manager) OverallStatus(results map[string]*Result) Status {
	status := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// CheckNames returns the names of all registered checkers
func (m *Manager) CheckNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.checkers))
	for i, checker := range m.checkers {
		names[i] = checker.Name()
	}
	return names
}
