package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/toastkit/pkg/store"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toastkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for toast lifetime in seconds.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Clock measures toast lifetime (default: store.RealClock()).
	Clock store.Clock
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the lifetime histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// WithClock sets the clock lifetimes are measured against.
func WithClock(clock store.Clock) MetricsOption {
	return func(c *MetricsConfig) {
		c.Clock = clock
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "toastkit",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 300},
		Registry:  prometheus.DefaultRegisterer,
		Clock:     store.RealClock(),
	}
}

// Observed is a toast source the metrics can follow. *store.Store
// implements it.
type Observed interface {
	Subscribe(fn store.Listener) func()
	Len() int
}

// Metrics holds the Prometheus collectors for the toast engine.
type Metrics struct {
	shown             *prometheus.CounterVec
	dismissed         *prometheus.CounterVec
	lifetime          *prometheus.HistogramVec
	active            prometheus.Gauge
	clipboardFailures prometheus.Counter
	effectFailures    prometheus.Counter
	wsSessions        prometheus.Gauge

	clock store.Clock
}

// NewMetrics registers the collectors with the configured registry.
// It panics if they are already registered there.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		shown: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_shown_total",
			Help:        "Total number of toasts shown",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		dismissed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_dismissed_total",
			Help:        "Total number of toasts removed, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		lifetime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_lifetime_seconds",
			Help:        "Time a toast stayed on screen before it was removed",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"reason"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_active",
			Help:        "Number of toasts currently in the store",
			ConstLabels: config.ConstLabels,
		}),

		clipboardFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_clipboard_failures_total",
			Help:        "Total number of failed clipboard writes",
			ConstLabels: config.ConstLabels,
		}),

		effectFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_effect_failures_total",
			Help:        "Total number of cosmetic effects that failed and were skipped",
			ConstLabels: config.ConstLabels,
		}),

		wsSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_ws_sessions",
			Help:        "Number of connected WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		clock: config.Clock,
	}
}

// Observe subscribes the metrics to src and returns the unsubscribe func.
func (m *Metrics) Observe(src Observed) func() {
	m.active.Set(float64(src.Len()))
	return src.Subscribe(func(ev store.Event) {
		switch ev.Kind {
		case store.EventShown:
			m.shown.WithLabelValues(string(ev.Toast.Type)).Inc()
		case store.EventDismissed:
			reason := string(ev.Reason)
			m.dismissed.WithLabelValues(reason).Inc()
			m.lifetime.WithLabelValues(reason).Observe(m.clock.Now().Sub(ev.Toast.CreatedAt).Seconds())
		case store.EventCleared:
			m.dismissed.WithLabelValues(string(store.ReasonCleared)).Add(float64(ev.Count))
		}
		m.active.Set(float64(src.Len()))
	})
}

// ClipboardFailed counts a failed clipboard write.
func (m *Metrics) ClipboardFailed() { m.clipboardFailures.Inc() }

// EffectFailed counts a skipped cosmetic effect.
func (m *Metrics) EffectFailed() { m.effectFailures.Inc() }

// SessionOpened tracks a new WebSocket session.
func (m *Metrics) SessionOpened() { m.wsSessions.Inc() }

// SessionClosed tracks a closed WebSocket session.
func (m *Metrics) SessionClosed() { m.wsSessions.Dec() }
