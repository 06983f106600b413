package driver

import (
	stderrors "errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors for one driver. Collectors are
// shared with other drivers registered on the same registerer.
type metrics struct {
	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	dispatches     *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	panics         prometheus.Counter
	listeners      prometheus.Gauge

	mu            sync.Mutex
	lastListeners int
}

func newMetrics(reg prometheus.Registerer, namespace string) *metrics {
	return &metrics{
		renders: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of virtual trees rendered",
		})),
		renderDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent reconciling the live DOM",
			Buckets:   prometheus.DefBuckets,
		})),
		dispatches: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of native events dispatched",
		}, []string{"type"})),
		deliveries: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Total number of synthetic events delivered to listeners",
		}, []string{"type"})),
		panics: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriber_panics_total",
			Help:      "Total number of recovered listener panics",
		})),
		listeners: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listeners",
			Help:      "Number of registered scoped event listeners",
		})),
	}
}

// register adds c to reg, returning the already registered collector when an
// identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Delivered, Panicked and ListenersChanged make metrics a delegate.Observer.

func (m *metrics) Delivered(typ string) {
	m.deliveries.WithLabelValues(typ).Inc()
}

func (m *metrics) Panicked(string) {
	m.panics.Inc()
}

// ListenersChanged moves the shared gauge by this driver's delta.
func (m *metrics) ListenersChanged(n int) {
	m.mu.Lock()
	delta := n - m.lastListeners
	m.lastListeners = n
	m.mu.Unlock()
	m.listeners.Add(float64(delta))
}
