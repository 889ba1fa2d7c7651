package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "svb_events"

// Run holds the metrics of one pipeline run.
type Run struct {
	registry *prometheus.Registry

	sourceEvents   *prometheus.GaugeVec
	sourceDuration *prometheus.GaugeVec
	sourceFailures *prometheus.CounterVec
	units          prometheus.Gauge
	rejected       *prometheus.GaugeVec
	defaulted      prometheus.Gauge
	written        prometheus.Gauge
	newEvents      prometheus.Gauge
	empty          prometheus.Gauge
	runDuration    prometheus.Gauge
	lastRun        prometheus.Gauge
}

// New creates a Run with its own registry.
func New() *Run {
	r := &Run{registry: prometheus.NewRegistry()}

	r.sourceEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_events",
		Help:      "Records returned by each source adapter",
	}, []string{"source"})
	r.sourceDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_duration_seconds",
		Help:      "Time spent in each source adapter",
	}, []string{"source"})
	r.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Source adapters that panicked or were skipped by the budget",
	}, []string{"source", "reason"})
	r.units = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "segment_units",
		Help:      "Candidate units produced by the segmenter",
	})
	r.rejected = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "extract_rejected",
		Help:      "Units rejected by the extractor, by reason",
	}, []string{"reason"})
	r.defaulted = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "extract_time_defaulted",
		Help:      "Records whose start came from the default-time policy",
	})
	r.written = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "output_events",
		Help:      "Records written to the output document",
	})
	r.newEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "output_new_events",
		Help:      "Records not present in the previous output",
	})
	r.empty = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_empty",
		Help:      "1 when the run found no events",
	})
	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the run",
	})
	r.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the end of the run",
	})

	r.registry.MustRegister(
		r.sourceEvents, r.sourceDuration, r.sourceFailures, r.units, r.rejected,
		r.defaulted, r.written, r.newEvents, r.empty, r.runDuration, r.lastRun,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Run) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveSource records one adapter's contribution. A non-empty failure reason
// also counts a failure.
func (r *Run) ObserveSource(source string, events int, elapsed time.Duration, failure string) {
	if r == nil {
		return
	}
	r.sourceEvents.WithLabelValues(source).Set(float64(events))
	r.sourceDuration.WithLabelValues(source).Set(elapsed.Seconds())
	if failure != "" {
		r.sourceFailures.WithLabelValues(source, failure).Inc()
	}
}

// ObserveExtraction records segmentation and extraction counts.
func (r *Run) ObserveExtraction(units, defaulted int, rejected map[string]int) {
	if r == nil {
		return
	}
	r.units.Set(float64(units))
	r.defaulted.Set(float64(defaulted))
	for reason, n := range rejected {
		r.rejected.WithLabelValues(reason).Set(float64(n))
	}
}

// ObserveOutput records what was written.
func (r *Run) ObserveOutput(written, newEvents int) {
	if r == nil {
		return
	}
	r.written.Set(float64(written))
	r.newEvents.Set(float64(newEvents))
}

// Finish records the end of the run.
func (r *Run) Finish(end time.Time, elapsed time.Duration, empty bool) {
	if r == nil {
		return
	}
	r.runDuration.Set(elapsed.Seconds())
	r.lastRun.Set(float64(end.Unix()))
	if empty {
		r.empty.Set(1)
	} else {
		r.empty.Set(0)
	}
}

// WriteTextfile writes the registry atomically in the text exposition format.
func (r *Run) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
