package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for reconciliation runs. A disabled
// Metrics instance is a no-op; callers never need to nil-check.
type Metrics struct {
	config MetricsConfig

	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runDuration   prometheus.Histogram

	actionsExecuted *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec

	resourcesPlanned *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	registry := prometheus.NewRegistry()
	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_started_total",
				Help:      "Total number of reconciliation runs started",
			},
			[]string{"mode", "dry_run"},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of reconciliation runs completed, by terminal status",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of reconciliation runs",
				Buckets:   prometheus.DefBuckets,
			},
		),
		actionsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "actions_executed_total",
				Help:      "Total number of plan actions executed, by op and outcome",
			},
			[]string{"op", "status"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "action_duration_seconds",
				Help:      "Duration of individual backend calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		resourcesPlanned: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "resources_planned",
				Help:      "Resources in the last computed plan, by disposition",
			},
			[]string{"disposition"},
		),
	}

	registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runDuration,
		m.actionsExecuted,
		m.actionDuration,
		m.resourcesPlanned,
	)
	return m, nil
}

// RecordRunStarted counts a run start.
func (m *Metrics) RecordRunStarted(mode string, dryRun bool) {
	if m.runsStarted == nil {
		return
	}
	dry := "false"
	if dryRun {
		dry = "true"
	}
	m.runsStarted.WithLabelValues(mode, dry).Inc()
}

// RecordRunCompleted counts a run completion and its duration.
func (m *Metrics) RecordRunCompleted(status string, duration time.Duration) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// RecordAction counts one executed action and its backend call duration.
func (m *Metrics) RecordAction(op, status string, duration time.Duration) {
	if m.actionsExecuted == nil {
		return
	}
	m.actionsExecuted.WithLabelValues(op, status).Inc()
	m.actionDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordPlanSummary publishes the disposition counts of the last plan.
func (m *Metrics) RecordPlanSummary(toApply, toTeardown, inSync int) {
	if m.resourcesPlanned == nil {
		return
	}
	m.resourcesPlanned.WithLabelValues("apply").Set(float64(toApply))
	m.resourcesPlanned.WithLabelValues("teardown").Set(float64(toTeardown))
	m.resourcesPlanned.WithLabelValues("in_sync").Set(float64(inSync))
}

// Handler returns the HTTP handler serving the metrics registry, or nil when
// metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves metrics over HTTP when a listen address is configured.
func (m *Metrics) StartServer() error {
	if m.registry == nil || m.config.ListenAddress == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		_ = http.ListenAndServe(m.config.ListenAddress, mux)
	}()
	return nil
}
