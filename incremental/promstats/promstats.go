// Package promstats exports incremental.System pass statistics to Prometheus.
package promstats

import (
	"errors"
	"time"

	"github.com/delaneyj/kinetix/incremental"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "kinetix").
	Namespace string

	// Subsystem is the metrics subsystem (default: "propagation").
	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

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

// Metrics implements incremental.Metrics.
type Metrics struct {
	passes   *prometheus.CounterVec
	steps    prometheus.Counter
	duration prometheus.Histogram
	fanout   prometheus.Histogram
}

var _ incremental.Metrics = (*Metrics)(nil)

// New registers the collectors and returns a Metrics ready to be passed to
// incremental.WithMetrics.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "kinetix",
		Subsystem: "propagation",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "passes_total",
			Help:        "Propagation passes by outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome"}),

		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "steps_total",
			Help:        "Subscriber invocations across completed passes",
			ConstLabels: cfg.ConstLabels,
		}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Wall time of completed passes",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		fanout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "pass_steps",
			Help:        "Subscriber invocations per completed pass",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}
}

func (m *Metrics) PassCompleted(steps int, elapsed time.Duration) {
	m.passes.WithLabelValues("ok").Inc()
	m.steps.Add(float64(steps))
	m.duration.Observe(elapsed.Seconds())
	m.fanout.Observe(float64(steps))
}

func (m *Metrics) PassFailed(err error) {
	m.passes.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case errors.Is(err, incremental.ErrCycle):
		return "cycle"
	case errors.Is(err, incremental.ErrStepLimit):
		return "step_limit"
	case errors.Is(err, incremental.ErrPanic):
		return "panic"
	default:
		return "error"
	}
}
