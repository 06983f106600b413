package driver

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultNamespace  = "isodom"
	defaultTracerName = "github.com/vango-dev/isodom/driver"
)

// Option configures a Driver.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	namespace  string
	provider   trace.TracerProvider
}

func defaultOptions() options {
	return options{
		logger:    slog.Default(),
		namespace: defaultNamespace,
	}
}

// WithLogger sets the logger. Each driver adds its own driver_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers the driver's Prometheus collectors with reg.
// Drivers sharing a registerer share collectors.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithMetricsNamespace sets the metric namespace (default: "isodom").
func WithMetricsNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithTracer sets the tracer provider for render and dispatch spans.
// Defaults to the global provider, which is a no-op unless configured.
func WithTracer(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.provider = tp
	}
}

func (o options) tracer() trace.Tracer {
	if o.provider != nil {
		return o.provider.Tracer(defaultTracerName)
	}
	return otel.Tracer(defaultTracerName)
}
