package registry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/KOMKZ/go-yogan-servicemgr/registry"

// Metric names
const (
	MetricActivations = "servicemgr.activations"
	MetricOverrides   = "servicemgr.overrides"
	MetricShutdowns   = "servicemgr.shutdowns"

	spanActivate = "servicemgr.activate"
)

// Attribute keys
const (
	AttrServiceName  = attribute.Key("service.name")
	AttrResult       = attribute.Key("servicemgr.result")
	AttrActivationID = attribute.Key("servicemgr.activation_id")
)

type instruments struct {
	tracer      trace.Tracer
	activations metric.Int64Counter
	overrides   metric.Int64Counter
	shutdowns   metric.Int64Counter
}

// newInstruments never fails: a counter that cannot be created falls back
// to a no-op so the registry keeps working without telemetry.
func newInstruments(mp metric.MeterProvider, tp trace.TracerProvider) *instruments {
	meter := mp.Meter(instrumentationName)

	return &instruments{
		tracer:      tp.Tracer(instrumentationName),
		activations: counter(meter, MetricActivations, "Service activations by result"),
		overrides:   counter(meter, MetricOverrides, "Definitions replaced through override"),
		shutdowns:   counter(meter, MetricShutdowns, "Controllers shut down"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name,
		metric.WithDescription(desc),
		metric.WithUnit("{count}"),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (i *instruments) recordActivation(ctx context.Context, name string, err error) {
	i.activations.Add(ctx, 1, metric.WithAttributes(AttrServiceName.String(name), resultAttr(err)))
}

func (i *instruments) recordOverride(ctx context.Context, name string) {
	i.overrides.Add(ctx, 1, metric.WithAttributes(AttrServiceName.String(name)))
}

func (i *instruments) recordShutdown(ctx context.Context, name string, err error) {
	i.shutdowns.Add(ctx, 1, metric.WithAttributes(AttrServiceName.String(name), resultAttr(err)))
}

func resultAttr(err error) attribute.KeyValue {
	if err != nil {
		return AttrResult.String("error")
	}
	return AttrResult.String("ok")
}
