// Package telemetry sets up the OpenTelemetry tracer and meter providers
// consumed by the registry's activation spans and counters.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Manager owns the SDK providers. When disabled it hands out the otel
// globals instead.
type Manager struct {
	cfg    Config
	logger logger.CtxLogger
	writer io.Writer
	global bool

	mu             sync.Mutex
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger replaces the "telemetry" module logger
func WithLogger(l logger.CtxLogger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithWriter redirects the stdout exporters
func WithWriter(w io.Writer) Option {
	return func(m *Manager) {
		m.writer = w
	}
}

// WithGlobal controls whether Start installs the providers as otel globals.
// Default true.
func WithGlobal(global bool) Option {
	return func(m *Manager) {
		m.global = global
	}
}

// NewManager creates a stopped manager
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		logger: logger.GetLogger("telemetry"),
		writer: os.Stdout,
		global: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start builds the providers. It is a no-op when telemetry is disabled.
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		m.logger.DebugCtx(ctx, "telemetry disabled")
		return nil
	}
	if err := m.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}

	res, err := m.resource(ctx)
	if err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}

	tp, err := m.newTracerProvider(ctx, res)
	if err != nil {
		return err
	}

	var mp *sdkmetric.MeterProvider
	if m.cfg.Metrics.Enabled {
		mp, err = m.newMeterProvider(ctx, res)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return err
		}
	}

	m.mu.Lock()
	m.tracerProvider = tp
	m.meterProvider = mp
	m.mu.Unlock()

	if m.global {
		otel.SetTracerProvider(tp)
		if mp != nil {
			otel.SetMeterProvider(mp)
		}
	}

	m.logger.InfoCtx(ctx, "telemetry started",
		zap.String("service_name", m.cfg.ServiceName),
		zap.String("exporter", m.cfg.Exporter.Type),
		zap.Bool("metrics", mp != nil))
	return nil
}

// Shutdown flushes and stops both providers
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	tp, mp := m.tracerProvider, m.meterProvider
	m.tracerProvider, m.meterProvider = nil, nil
	m.mu.Unlock()

	var err error
	if tp != nil {
		if e := tp.Shutdown(ctx); e != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown tracer provider failed: %w", e))
		}
	}
	if mp != nil {
		if e := mp.Shutdown(ctx); e != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown meter provider failed: %w", e))
		}
	}
	return err
}

// TracerProvider returns the SDK provider, or the otel global when disabled
func (m *Manager) TracerProvider() trace.TracerProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tracerProvider == nil {
		return otel.GetTracerProvider()
	}
	return m.tracerProvider
}

// MeterProvider returns the SDK provider, or the otel global when metrics
// are disabled
func (m *Manager) MeterProvider() metric.MeterProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meterProvider == nil {
		return otel.GetMeterProvider()
	}
	return m.meterProvider
}

func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) resource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(m.cfg.ServiceName),
			semconv.ServiceVersion(m.cfg.ServiceVersion),
			attribute.String("telemetry.exporter", m.cfg.Exporter.Type),
		),
		resource.WithTelemetrySDK(),
	)
}

func (m *Manager) newTracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := m.spanExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("create span exporter failed: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(m.sampler()),
	}
	if m.cfg.Batch.Enabled {
		opts = append(opts, sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(m.cfg.Batch.ScheduleDelay),
			sdktrace.WithExportTimeout(m.cfg.Batch.ExportTimeout),
		))
	} else {
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func (m *Manager) spanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch m.cfg.Exporter.Type {
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(m.writer), stdouttrace.WithPrettyPrint())
	case ExporterNoop:
		return noopExporter{}, nil
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(m.cfg.Exporter.Endpoint),
			otlptracegrpc.WithTimeout(m.cfg.Exporter.Timeout),
		}
		if m.cfg.Exporter.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(m.cfg.Exporter.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(m.cfg.Exporter.Headers))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.cfg.Exporter.Type)
	}
}

func (m *Manager) newMeterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch m.cfg.Exporter.Type {
	case ExporterStdout:
		exporter, err = stdoutmetric.New(stdoutmetric.WithWriter(m.writer))
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(m.cfg.Exporter.Endpoint),
			otlpmetricgrpc.WithTimeout(m.cfg.Exporter.Timeout),
		}
		if m.cfg.Exporter.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		if len(m.cfg.Exporter.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(m.cfg.Exporter.Headers))
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", m.cfg.Exporter.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("create metrics exporter failed: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.cfg.Metrics.ExportInterval))),
	), nil
}

func (m *Manager) sampler() sdktrace.Sampler {
	switch m.cfg.Sampler.Type {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "trace_id_ratio":
		return sdktrace.TraceIDRatioBased(m.cfg.Sampler.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

type noopExporter struct{}

func (noopExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }

func (noopExporter) Shutdown(context.Context) error { return nil }
