package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{
			name: "custom config",
			config: Config{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				EnableTracing:  true,
				EnableMetrics:  true,
			},
		},
		{
			name: "metrics only",
			config: Config{
				ServiceName: "test-service", ServiceVersion: "1.0.0", Environment: "test",
				EnableTracing: false, EnableMetrics: true,
			},
		},
		{
			name: "tracing only",
			config: Config{
				ServiceName: "test-service", ServiceVersion: "1.0.0", Environment: "test",
				EnableTracing: true, EnableMetrics: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(ctx, tt.config)
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if tt.config.EnableTracing && provider.Tracer() == nil {
				t.Error("Tracer() returned nil when tracing is enabled")
			}
			if tt.config.EnableMetrics && provider.Meter() == nil {
				t.Error("Meter() returned nil when metrics are enabled")
			}
			if err := provider.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestRecordTick(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	// Should not panic.
	provider.RecordTick(ctx, "graph-1", 2*time.Millisecond)
	provider.RecordTick(ctx, "graph-1", 3*time.Millisecond)
}

func TestRecordUnderrun(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordUnderrun(ctx, "graph-1")
}

func TestRecordEditCommand(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	tests := []struct {
		name        string
		commandType string
		applied     bool
	}{
		{name: "applied add node", commandType: "AddNode", applied: true},
		{name: "rejected connect", commandType: "ConnectNodes", applied: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider.RecordEditCommand(ctx, "graph-1", tt.commandType, tt.applied)
		})
	}
}

func TestRecordGraphSize(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordGraphSize(ctx, "graph-1", 4, 3)
}

func TestShutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	// Second shutdown should not panic even if the SDK returns an error.
	_ = provider.Shutdown(ctx)
}

func TestProviderWithNilMetrics(t *testing.T) {
	ctx := context.Background()
	config := Config{
		ServiceName: "test", ServiceVersion: "1.0.0", Environment: "test",
		EnableTracing: true, EnableMetrics: false,
	}

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	// These should not panic even with nil metrics.
	provider.RecordTick(ctx, "graph-1", time.Millisecond)
	provider.RecordUnderrun(ctx, "graph-1")
	provider.RecordEditCommand(ctx, "graph-1", "AddNode", true)
	provider.RecordGraphSize(ctx, "graph-1", 0, 0)
}
