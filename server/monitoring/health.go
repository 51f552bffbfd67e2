package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// HealthStatus is the health verdict for a component or the whole system.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth is the verdict for a single component.
type ComponentHealth struct {
	Name      string        `json:"name"`
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Latency   time.Duration `json:"latency,omitempty"`
}

// HealthCheckResult aggregates per-component verdicts with system numbers.
type HealthCheckResult struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     time.Duration              `json:"uptime"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
	System     SystemHealth               `json:"system"`
}

// SystemHealth carries runtime-level numbers.
type SystemHealth struct {
	MemoryUsage float64 `json:"memory_usage_percent"`
	Goroutines  int     `json:"goroutines"`
}

// HealthCheckFunc produces the health verdict for one registered component.
type HealthCheckFunc func(ctx context.Context) ComponentHealth

// Pinger is the slice of the database the checker needs.
type Pinger interface {
	Ping() error
}

// HealthChecker runs the database ping plus every registered component check
// and folds the verdicts into one overall status. A degraded component
// (model backend down, confirmation queue backed up) leaves the service
// usable; only a failed database makes it unhealthy.
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]HealthCheckFunc
	startTime  time.Time
	version    string
	db         Pinger
}

// NewHealthChecker creates a checker. db may be nil in tests.
func NewHealthChecker(version string, db Pinger) *HealthChecker {
	return &HealthChecker{
		components: make(map[string]HealthCheckFunc),
		startTime:  time.Now(),
		version:    version,
		db:         db,
	}
}

// RegisterComponent adds a component to the check set.
func (hc *HealthChecker) RegisterComponent(name string, checkFunc HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.components[name] = checkFunc
}

// Check runs all component checks and returns the aggregate result.
func (hc *HealthChecker) Check(ctx context.Context) HealthCheckResult {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	components := make(map[string]ComponentHealth)
	overallStatus := HealthStatusHealthy

	if hc.db != nil {
		start := time.Now()
		err := hc.db.Ping()
		latency := time.Since(start)
		status := HealthStatusHealthy
		message := "Database is healthy"
		if err != nil {
			status = HealthStatusUnhealthy
			message = fmt.Sprintf("Database error: %v", err)
			overallStatus = HealthStatusUnhealthy
		}
		components["database"] = ComponentHealth{
			Name:      "database",
			Status:    status,
			Message:   message,
			Timestamp: time.Now(),
			Latency:   latency,
		}
	}

	for name, checkFunc := range hc.components {
		componentHealth := checkFunc(ctx)
		components[name] = componentHealth
		if componentHealth.Status == HealthStatusUnhealthy {
			overallStatus = HealthStatusUnhealthy
		} else if componentHealth.Status == HealthStatusDegraded && overallStatus == HealthStatusHealthy {
			overallStatus = HealthStatusDegraded
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryUsage := float64(m.Alloc) / float64(m.Sys) * 100
	if memoryUsage > 100 {
		memoryUsage = 100
	}

	return HealthCheckResult{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Uptime:     time.Since(hc.startTime),
		Version:    hc.version,
		Components: components,
		System: SystemHealth{
			MemoryUsage: memoryUsage,
			Goroutines:  runtime.NumGoroutine(),
		},
	}
}

// HTTPHandler serves the full health check result. Degraded still answers
// 200; orchestrators should not restart a pod because the model backend is
// offline.
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result := hc.Check(ctx)

		statusCode := http.StatusOK
		if result.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(result)
	}
}

// LivenessHandler is the Kubernetes liveness probe: the process is up.
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// ReadinessHandler is the Kubernetes readiness probe: ready once the
// database answers.
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		result := hc.Check(ctx)

		if dbHealth, ok := result.Components["database"]; ok {
			if dbHealth.Status == HealthStatusHealthy {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Ready"))
				return
			}
		}

		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Not Ready"))
	}
}

// LogHealthStatus logs the current aggregate health, warning per bad
// component. Meant for a periodic background ticker.
func (hc *HealthChecker) LogHealthStatus() {
	result := hc.Check(context.Background())

	slog.Info("Health check",
		"status", result.Status,
		"uptime", result.Uptime,
		"components", len(result.Components),
		"goroutines", result.System.Goroutines,
		"memory_usage", fmt.Sprintf("%.2f%%", result.System.MemoryUsage),
	)

	for name, component := range result.Components {
		if component.Status != HealthStatusHealthy {
			slog.Warn("Component health issue",
				"component", name,
				"status", component.Status,
				"message", component.Message,
			)
		}
	}
}
