// Package metrics exports Prometheus metrics about cells.
//
// Nothing in the core package measures itself. Cells are instrumented from
// the outside: Instrument listens to a cell like any other observer, and
// Timed wraps a selector generator.
package metrics

import (
	"time"

	"github.com/delaneyj/coiled"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config holds the settings New builds a Collector from.
type Config struct {
	// Namespace is the metrics namespace (default: "coiled").
	Namespace string

	Subsystem string

	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for evaluation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is where the metrics are registered.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option modifies the default Config.
type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "coiled",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector owns the cell metrics. Attach it with Instrument and Timed.
type Collector struct {
	notifications      *prometheus.CounterVec
	dependencies       *prometheus.GaugeVec
	evaluations        *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
}

// New registers the collector's metrics. Registering two collectors with the
// same namespace and subsystem on one registry panics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of change notifications emitted by a cell",
			ConstLabels: config.ConstLabels,
		}, []string{"key", "kind"}),

		dependencies: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dependencies",
			Help:        "Number of cells a selector has subscribed to",
			ConstLabels: config.ConstLabels,
		}, []string{"key"}),

		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "evaluations_total",
			Help:        "Total number of selector generator runs",
			ConstLabels: config.ConstLabels,
		}, []string{"key", "result"}),

		evaluationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "evaluation_duration_seconds",
			Help:        "Selector generator run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"key"}),
	}
}

// Instrument counts the notifications of cell and tracks how many
// dependencies it has. The returned disconnector stops counting.
func Instrument[T any](c *Collector, cell coiled.Cell[T]) *coiled.Disconnector {
	key, kind := cell.Key(), cell.Kind().String()
	deps := c.dependencies.WithLabelValues(key)
	notifications := c.notifications.WithLabelValues(key, kind)

	deps.Set(float64(len(cell.Dependencies())))
	return cell.Subscribe(coiled.ListenerFunc(func(T) {
		notifications.Inc()
		// a recompute may have read new cells
		deps.Set(float64(len(cell.Dependencies())))
	}))
}

// Timed wraps gen so each run is counted and timed under key.
func Timed[T any](c *Collector, key string, gen coiled.Generator[T]) coiled.Generator[T] {
	duration := c.evaluationDuration.WithLabelValues(key)
	return func(ctx *coiled.Context) (T, error) {
		start := time.Now()
		value, err := gen(ctx)
		duration.Observe(time.Since(start).Seconds())

		result := "ok"
		if err != nil {
			result = "error"
		}
		c.evaluations.WithLabelValues(key, result).Inc()
		return value, err
	}
}
