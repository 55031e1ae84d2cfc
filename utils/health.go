package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthStatus is a point-in-time view of the service's dependencies.
type HealthStatus struct {
	Healthy    bool              `json:"-"`
	Components map[string]string `json:"components"`
	CheckedAt  time.Time         `json:"checkedAt"`
}

// CheckHealth runs every probe concurrently within timeout.
func CheckHealth(ctx context.Context, timeout time.Duration, checks map[string]HealthCheck) HealthStatus {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	status := HealthStatus{Healthy: true, Components: make(map[string]string, len(checks)), CheckedAt: time.Now()}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheck) {
			defer wg.Done()
			state := "ok"
			if err := check(ctx); err != nil {
				state = "unavailable"
				GetLogger().Warn("health check failed", zap.String("component", name), zap.Error(err))
			}
			mu.Lock()
			status.Components[name] = state
			if state != "ok" {
				status.Healthy = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return status
}
