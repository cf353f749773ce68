package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/jonboulle/clockwork"
)

// ClientCounter reports connected live-feed clients
type ClientCounter interface {
	ClientCount() int
}

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	BuildTime string
	Commit    string
}

// HealthService provides health check functionality
type HealthService struct {
	build     BuildInfo
	store     *DatasetStore
	clients   ClientCounter
	clock     clockwork.Clock
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Runtime   map[string]any `json:"runtime,omitempty"`
	Services  map[string]any `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. store and clients may be nil.
func NewHealthService(build BuildInfo, store *DatasetStore, clients ClientCounter, clock clockwork.Clock, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if build.Version == "" {
		build.Version = "dev"
	}

	return &HealthService{
		build:     build,
		store:     store,
		clients:   clients,
		clock:     clock,
		startTime: clock.Now(),
		logger:    logger.With(slog.String("component", "services.health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: hs.clock.Now(),
		Version:   hs.build.Version,
		Services: map[string]any{
			"dataset":   hs.datasetHealth(),
			"websocket": hs.websocketHealth(),
		},
	}

	hs.logger.DebugContext(ctx, "Health check completed", slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports ready once a dataset has been published
func (hs *HealthService) ReadinessCheck(_ context.Context) HealthStatus {
	dataset := hs.datasetHealth()
	status := HealthStatus{
		Status:    "ready",
		Timestamp: hs.clock.Now(),
		Version:   hs.build.Version,
		Services:  map[string]any{"dataset": dataset},
	}
	if dataset.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(_ context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: hs.clock.Now(),
		Version:   hs.build.Version,
		Runtime: map[string]any{
			"uptime":     hs.clock.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	return map[string]any{
		"version":    hs.build.Version,
		"build_time": hs.build.BuildTime,
		"commit":     hs.build.Commit,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     hs.clock.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) datasetHealth() ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{Status: "not_configured"}
	}
	ds, err := hs.store.Current()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Message: ds.Info.Version}
}

func (hs *HealthService) websocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "not_configured"}
	}
	return ServiceHealth{Status: "ready", Message: pluralClients(hs.clients.ClientCount())}
}

func pluralClients(n int) string {
	if n == 1 {
		return "1 client connected"
	}
	return fmt.Sprintf("%d clients connected", n)
}
