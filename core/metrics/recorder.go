package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// TableStats is the outcome of reconciling one table.
type TableStats struct {
	Upserted      int
	Deleted       int
	FailedUpserts int
	FailedDeletes int
	Failed        bool
	Duration      time.Duration
}

// Recorder holds the run metrics.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	tables     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates a recorder whose metric names start with namespace.
func New(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entity_operations_total",
				Help:      "Entity operations applied to the target store",
			},
			[]string{"mode", "table", "operation", "status"},
		),
		tables: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tables_total",
				Help:      "Reconciled tables by outcome",
			},
			[]string{"mode", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_duration_seconds",
				Help:      "Duration of a table reconciliation in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"mode"},
		),
	}
	r.registry.MustRegister(r.operations, r.tables, r.duration)
	return r
}

// Registry exposes the registry, e.g. for tests or an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveTable records the outcome of one table. A nil recorder is a no-op.
func (r *Recorder) ObserveTable(mode, table string, s TableStats) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(mode, table, "upsert", "success").Add(float64(s.Upserted))
	r.operations.WithLabelValues(mode, table, "upsert", "error").Add(float64(s.FailedUpserts))
	r.operations.WithLabelValues(mode, table, "delete", "success").Add(float64(s.Deleted))
	r.operations.WithLabelValues(mode, table, "delete", "error").Add(float64(s.FailedDeletes))

	status := "success"
	if s.Failed {
		status = "error"
	}
	r.tables.WithLabelValues(mode, status).Inc()
	r.duration.WithLabelValues(mode).Observe(s.Duration.Seconds())
}

// Push sends the registry to the configured Pushgateway, replacing the job's
// previous metrics.
func (r *Recorder) Push(ctx context.Context, cfg Config) error {
	if cfg.PushgatewayURL == "" {
		return nil
	}
	job := cfg.Job
	if job == "" {
		job = "tablesync"
	}
	if err := push.New(cfg.PushgatewayURL, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", cfg.PushgatewayURL, err)
	}
	return nil
}
