// Package metrics exports duration computations as Prometheus metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/transitmetrics/gtfs"
	"github.com/transitmetrics/gtfs/warnings"
)

// Collector implements gtfs.Recorder. Metrics are kept in a private registry.
type Collector struct {
	reg *prometheus.Registry

	Computations *prometheus.CounterVec // method label
	Rows         *prometheus.CounterVec // method label
	Trips        *prometheus.CounterVec // method label

	TripsWithoutArrivals       prometheus.Counter
	TripsWithoutServicePattern prometheus.Counter
	DroppedSegments            prometheus.Counter

	Warnings *prometheus.CounterVec // kind label: unknown_method|non_canonical_schedule|missing_service_pattern

	ComputationDuration *prometheus.HistogramVec // method label
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		reg: reg,
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtfsdurations_computations_total",
			Help: "Total duration computations.",
		}, []string{"method"}),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtfsdurations_rows_total",
			Help: "Total rows produced.",
		}, []string{"method"}),
		Trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtfsdurations_trips_total",
			Help: "Total trips considered after filtering.",
		}, []string{"method"}),
		TripsWithoutArrivals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gtfsdurations_trips_without_arrivals_total",
			Help: "Total trips without a parseable arrival time.",
		}),
		TripsWithoutServicePattern: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gtfsdurations_trips_without_service_pattern_total",
			Help: "Total trips whose service has no service pattern.",
		}),
		DroppedSegments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gtfsdurations_dropped_segments_total",
			Help: "Total stop-to-stop segments left out of detailed results.",
		}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gtfsdurations_warnings_total",
			Help: "Total warnings reported by duration computations.",
		}, []string{"kind"}),
		ComputationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gtfsdurations_computation_duration_seconds",
			Help:    "Duration of duration computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"method"}),
	}
	reg.MustRegister(
		c.Computations, c.Rows, c.Trips,
		c.TripsWithoutArrivals, c.TripsWithoutServicePattern, c.DroppedSegments,
		c.Warnings, c.ComputationDuration,
	)
	return c
}

func (c *Collector) Record(durations *gtfs.Durations, elapsed time.Duration) {
	method := durations.Method.String()
	c.Computations.WithLabelValues(method).Inc()
	c.Rows.WithLabelValues(method).Add(float64(durations.Len()))
	c.Trips.WithLabelValues(method).Add(float64(durations.Stats.Trips))
	c.TripsWithoutArrivals.Add(float64(durations.Stats.TripsWithoutArrivals))
	c.TripsWithoutServicePattern.Add(float64(durations.Stats.TripsWithoutServicePattern))
	c.DroppedSegments.Add(float64(durations.Stats.DroppedSegments))
	for _, w := range durations.Warnings {
		c.Warnings.WithLabelValues(warningKind(w)).Inc()
	}
	c.ComputationDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func warningKind(w warnings.DurationWarning) string {
	switch w.(type) {
	case warnings.UnknownMethod:
		return "unknown_method"
	case warnings.NonCanonicalSchedule:
		return "non_canonical_schedule"
	case warnings.MissingServicePattern:
		return "missing_service_pattern"
	default:
		return "other"
	}
}

// WriteTextfile writes the metrics in the text exposition format, for the node exporter's textfile
// collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
