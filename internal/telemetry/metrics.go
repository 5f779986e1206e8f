// Package telemetry exports benchmark results outside the console report:
// Prometheus collectors written to a node_exporter textfile, and an SQLite
// history of completed runs.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aman-CERP/indexbench/internal/stats"
)

// Metrics holds the collectors for one benchmark run. It implements
// bench.Observer. Collectors are registered on a private registry so several
// runs in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	RepetitionsTotal   prometheus.Counter
	RepetitionSeconds  prometheus.Histogram
	DocsIndexedTotal   prometheus.Counter
	RotationsTotal     prometheus.Counter
	MeanSeconds        prometheus.Gauge
	TrimmedMeanSeconds prometheus.Gauge
	DiscardedTotal     prometheus.Gauge
}

// NewMetrics creates and registers the run collectors. Every series carries
// the engine name as a constant label.
func NewMetrics(engine string) *Metrics {
	labels := prometheus.Labels{"engine": engine}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RepetitionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "indexbench_repetitions_total",
				Help:        "Number of completed benchmark repetitions.",
				ConstLabels: labels,
			},
		),
		RepetitionSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "indexbench_repetition_seconds",
				Help:        "Wall-clock time to build the index once.",
				ConstLabels: labels,
				Buckets:     prometheus.ExponentialBuckets(0.01, 2, 16),
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "indexbench_documents_indexed_total",
				Help:        "Documents indexed across all repetitions.",
				ConstLabels: labels,
			},
		),
		RotationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "indexbench_writer_rotations_total",
				Help:        "Index writer rotations across all repetitions.",
				ConstLabels: labels,
			},
		),
		MeanSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "indexbench_mean_seconds",
				Help:        "Mean repetition time of the last run.",
				ConstLabels: labels,
			},
		),
		TrimmedMeanSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "indexbench_trimmed_mean_seconds",
				Help:        "Quarter-trimmed mean repetition time of the last run.",
				ConstLabels: labels,
			},
		),
		DiscardedTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "indexbench_trimmed_discarded",
				Help:        "Repetitions discarded by the trimmed mean of the last run.",
				ConstLabels: labels,
			},
		),
	}

	m.registry.MustRegister(
		m.RepetitionsTotal,
		m.RepetitionSeconds,
		m.DocsIndexedTotal,
		m.RotationsTotal,
		m.MeanSeconds,
		m.TrimmedMeanSeconds,
		m.DiscardedTotal,
	)

	return m
}

// Registry returns the registry holding the run collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RepetitionFinished records one repetition.
func (m *Metrics) RepetitionFinished(res stats.RepetitionResult) {
	m.RepetitionsTotal.Inc()
	m.RepetitionSeconds.Observe(res.ElapsedSeconds)
	m.DocsIndexedTotal.Add(float64(res.DocumentsIndexed))
	m.RotationsTotal.Add(float64(res.Rotations))
}

// RunFinished records the aggregate of the run.
func (m *Metrics) RunFinished(agg stats.Aggregate) {
	m.MeanSeconds.Set(agg.MeanSeconds)
	m.TrimmedMeanSeconds.Set(agg.TrimmedMeanSeconds)
	m.DiscardedTotal.Set(float64(agg.Discarded))
}

// WriteTextfile writes every collector to path in the Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
