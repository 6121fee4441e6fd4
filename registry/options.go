package registry

import (
	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RegisterOption adjusts a definition before it is validated
type RegisterOption func(*Definition)

// WithConfig sets the configuration handed to Init. Nil means component.Empty().
func WithConfig(cfg *component.Configuration) RegisterOption {
	return func(d *Definition) {
		d.Config = cfg
	}
}

// WithOverride allows replacing an existing definition of the same name
func WithOverride() RegisterOption {
	return func(d *Definition) {
		d.Override = true
	}
}

// Option configures a strategy
type Option func(*strategyOptions)

type strategyOptions struct {
	logger         logger.CtxLogger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// WithLogger replaces the default "servicemgr" module logger
func WithLogger(l logger.CtxLogger) Option {
	return func(o *strategyOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider replaces the global otel meter provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *strategyOptions) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithTracerProvider replaces the global otel tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *strategyOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}
