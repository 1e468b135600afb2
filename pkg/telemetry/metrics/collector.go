package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Check names.
const (
	CheckConnect    = "connect"
	CheckVersion    = "version"
	CheckMasterOnly = "master_only"
)

// Check results.
const (
	ResultPass    = "pass"
	ResultFail    = "fail"
	ResultSkipped = "skipped"
)

// Config controls metric naming.
type Config struct {
	Enabled   bool
	Namespace string
	Subsystem string

	// BuildDurationBuckets defaults to 1ms..1s.
	BuildDurationBuckets []float64
}

// Collector owns the esclient metrics and their registry.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	buildsTotal   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	checksTotal   *prometheus.CounterVec
	serverVersion *prometheus.GaugeVec
}

// NewCollector creates a collector and registers its metrics with registry,
// or with a fresh registry when registry is nil.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "esclient"
	}
	if len(cfg.BuildDurationBuckets) == 0 {
		cfg.BuildDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builds_total",
				Help:      "Total number of configuration builds",
			},
			[]string{"source", "result"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "build_duration_seconds",
				Help:      "Time spent resolving a configuration",
				Buckets:   cfg.BuildDurationBuckets,
			},
		),
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connection_checks_total",
				Help:      "Total number of post-connection invariant checks",
			},
			[]string{"check", "result"},
		),
		serverVersion: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "server_version_info",
				Help:      "Server version reported by the last connection check",
			},
			[]string{"version"},
		),
	}

	registry.MustRegister(c.buildsTotal, c.buildDuration, c.checksTotal, c.serverVersion)
	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordBuild records one Builder run.
func (c *Collector) RecordBuild(source, result string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.buildsTotal.WithLabelValues(source, result).Inc()
	c.buildDuration.Observe(duration.Seconds())
}

// RecordCheck records the outcome of one invariant check.
func (c *Collector) RecordCheck(check, result string) {
	if !c.enabled() {
		return
	}
	c.checksTotal.WithLabelValues(check, result).Inc()
}

// SetServerVersion marks version as the last one seen.
func (c *Collector) SetServerVersion(version string) {
	if !c.enabled() {
		return
	}
	c.serverVersion.Reset()
	c.serverVersion.WithLabelValues(version).Set(1)
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every metric of the registry to path in the
// Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
