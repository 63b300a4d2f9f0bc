package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "audiograph-engine"

	metricTicks         = "graph.ticks.total"
	metricTickDuration  = "graph.tick.duration"
	metricUnderruns     = "ring.underruns.total"
	metricEditCommands  = "edit.commands.total"
	metricEditApplied   = "edit.commands.applied.total"
	metricEditRejected  = "edit.commands.rejected.total"
	metricLiveNodes     = "graph.nodes.live"
	metricLiveEdges     = "graph.edges.live"
)

// Provider manages OpenTelemetry setup and provides access to tracers and
// meters for the generator loop and the edit-arbitration dispatcher (§4.3,
// §4.4).
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	ticks        metric.Int64Counter
	tickDuration metric.Float64Histogram
	underruns    metric.Int64Counter
	editCommands metric.Int64Counter
	editApplied  metric.Int64Counter
	editRejected metric.Int64Counter
	liveNodes    metric.Int64Gauge
	liveEdges    metric.Int64Gauge

	mu sync.RWMutex
}

// Config holds telemetry configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
}

// DefaultConfig returns default telemetry configuration
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider creates a new telemetry provider with a Prometheus metrics
// exporter, mirroring the registry-of-instruments pattern used elsewhere in
// this codebase (behavior.Registry, observer.Manager).
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	provider := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	if config.EnableMetrics {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("telemetry: init metrics: %w", err)
		}
	}
	if config.EnableTracing {
		provider.initTracing()
	}

	return provider, nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter(serviceName)

	return p.createMetricInstruments()
}

func (p *Provider) initTracing() {
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

func (p *Provider) createMetricInstruments() error {
	var err error

	p.ticks, err = p.meter.Int64Counter(
		metricTicks,
		metric.WithDescription("Total number of blocks evaluated by the generator"),
	)
	if err != nil {
		return err
	}

	p.tickDuration, err = p.meter.Float64Histogram(
		metricTickDuration,
		metric.WithDescription("Block evaluation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.underruns, err = p.meter.Int64Counter(
		metricUnderruns,
		metric.WithDescription("Total number of audio-callback underruns (§4.4)"),
	)
	if err != nil {
		return err
	}

	p.editCommands, err = p.meter.Int64Counter(
		metricEditCommands,
		metric.WithDescription("Total number of edit commands received"),
	)
	if err != nil {
		return err
	}

	p.editApplied, err = p.meter.Int64Counter(
		metricEditApplied,
		metric.WithDescription("Total number of edit commands applied"),
	)
	if err != nil {
		return err
	}

	p.editRejected, err = p.meter.Int64Counter(
		metricEditRejected,
		metric.WithDescription("Total number of edit commands rejected"),
	)
	if err != nil {
		return err
	}

	p.liveNodes, err = p.meter.Int64Gauge(
		metricLiveNodes,
		metric.WithDescription("Current number of live nodes in the graph"),
	)
	if err != nil {
		return err
	}

	p.liveEdges, err = p.meter.Int64Gauge(
		metricLiveEdges,
		metric.WithDescription("Current number of live edges in the graph"),
	)
	return err
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics.
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordTick records one generator block evaluation (§4.4).
func (p *Provider) RecordTick(ctx context.Context, graphID string, duration time.Duration) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("graph.id", graphID)}
	p.ticks.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.tickDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

// RecordUnderrun records one audio-callback underrun.
func (p *Provider) RecordUnderrun(ctx context.Context, graphID string) {
	if p.meter == nil {
		return
	}
	p.underruns.Add(ctx, 1, metric.WithAttributes(attribute.String("graph.id", graphID)))
}

// RecordEditCommand records the outcome of one edit command (§4.3, §6.2).
func (p *Provider) RecordEditCommand(ctx context.Context, graphID, commandType string, applied bool) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("graph.id", graphID),
		attribute.String("command.type", commandType),
	}
	p.editCommands.Add(ctx, 1, metric.WithAttributes(attrs...))
	if applied {
		p.editApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.editRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordGraphSize records the current node and edge counts.
func (p *Provider) RecordGraphSize(ctx context.Context, graphID string, nodes, edges int) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("graph.id", graphID)}
	p.liveNodes.Record(ctx, int64(nodes), metric.WithAttributes(attrs...))
	p.liveEdges.Record(ctx, int64(edges), metric.WithAttributes(attrs...))
}

// Shutdown gracefully shuts down the telemetry provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown meter provider: %w", err)
		}
	}
	return nil
}
