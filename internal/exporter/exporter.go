package exporter

import (
	"log/slog"

	"github.com/hydazz/parent-notifier/internal/config"
	"github.com/hydazz/parent-notifier/internal/feed"
	"github.com/prometheus/client_golang/prometheus"
)

// StateSource provides the feed state read on every scrape.
type StateSource interface {
	State() feed.State
}

// Exporter represents the feed metrics exporter
type Exporter struct {
	config  *config.Config
	source  StateSource
	metrics *Metrics
}

// Metrics contains all Prometheus metrics
type Metrics struct {
	Fetches        *prometheus.CounterVec
	DroppedRecords prometheus.Counter
	Events         *prometheus.Desc
	LastRefresh    *prometheus.Desc
	Error          *prometheus.Desc
}

// New creates a new exporter and registers it with reg
func New(cfg *config.Config, reg prometheus.Registerer) (*Exporter, error) {
	instance := prometheus.Labels{"instance": cfg.Exporter.InstanceName}

	metrics := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "parent_notifier_fetches_total",
				Help:        "Completed detection fetches by outcome",
				ConstLabels: instance,
			},
			[]string{"outcome"},
		),
		DroppedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "parent_notifier_dropped_records_total",
				Help:        "Detection records discarded for missing or non-string fields",
				ConstLabels: instance,
			},
		),
		Events: prometheus.NewDesc(
			"parent_notifier_feed_events",
			"Events currently held in the feed",
			nil, instance,
		),
		LastRefresh: prometheus.NewDesc(
			"parent_notifier_last_refresh_timestamp_seconds",
			"Time of the last successful refresh",
			nil, instance,
		),
		Error: prometheus.NewDesc(
			"parent_notifier_feed_error",
			"1 if the last applied fetch failed",
			nil, instance,
		),
	}

	exporter := &Exporter{
		config:  cfg,
		metrics: metrics,
	}

	if err := reg.Register(exporter); err != nil {
		return nil, err
	}

	return exporter, nil
}

// Attach sets the feed whose state is exported on scrape
func (e *Exporter) Attach(source StateSource) {
	e.source = source
}

// ObserveFetch implements feed.Recorder
func (e *Exporter) ObserveFetch(outcome feed.Outcome, events, dropped int) {
	e.metrics.Fetches.WithLabelValues(string(outcome)).Inc()
	if dropped > 0 {
		e.metrics.DroppedRecords.Add(float64(dropped))
	}
}

// Describe implements prometheus.Collector interface
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	e.metrics.Fetches.Describe(ch)
	e.metrics.DroppedRecords.Describe(ch)
	ch <- e.metrics.Events
	ch <- e.metrics.LastRefresh
	ch <- e.metrics.Error
}

// Collect implements prometheus.Collector interface
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.metrics.Fetches.Collect(ch)
	e.metrics.DroppedRecords.Collect(ch)

	if e.source == nil {
		return
	}

	state := e.source.State()
	if e.config.IsDebugEnabled() {
		slog.Debug("Collecting feed metrics", "events", len(state.Events), "error", state.ErrorMessage)
	}

	ch <- prometheus.MustNewConstMetric(e.metrics.Events, prometheus.GaugeValue, float64(len(state.Events)))
	if !state.LastRefresh.IsZero() {
		ch <- prometheus.MustNewConstMetric(e.metrics.LastRefresh, prometheus.GaugeValue, float64(state.LastRefresh.Unix()))
	}
	ch <- prometheus.MustNewConstMetric(e.metrics.Error, prometheus.GaugeValue, boolToFloat(state.ErrorMessage != ""))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
