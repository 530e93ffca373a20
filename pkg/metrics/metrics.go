// Package metrics instruments refresh passes with Prometheus collectors.
// Tally is not a server; the collected values are exported to a
// node-exporter textfile after each run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/inventory"
)

const namespace = "tally"

// Recorder holds the collectors of one process. It implements
// reconcile.Recorder and inventory.Observer.
type Recorder struct {
	registry *prometheus.Registry

	// StageDuration measures each pass stage. Labels: stage
	StageDuration *prometheus.HistogramVec
	// DetectorObserved counts observations per detector. Labels: detector
	DetectorObserved *prometheus.CounterVec
	// DetectorCleared counts stale records cleared per detector. Labels: detector
	DetectorCleared *prometheus.CounterVec
	// DetectorErrors counts failed detector runs. Labels: detector
	DetectorErrors *prometheus.CounterVec
	// Passes counts finished passes. Labels: outcome, degraded
	Passes *prometheus.CounterVec
	// Installed is the number of installed records after the last pass.
	Installed prometheus.Gauge
	// StatusChanges counts directory changes. Labels: transition (installed, removed, moved)
	StatusChanges *prometheus.CounterVec
	// LastPass is the unix time of the last finished pass.
	LastPass prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "stage_duration_seconds",
			Help:      "Duration of refresh pass stages in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
		DetectorObserved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "observed_total",
			Help:      "Package versions observed by detector",
		}, []string{"detector"}),
		DetectorCleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "cleared_total",
			Help:      "Stale records cleared by detector",
		}, []string{"detector"}),
		DetectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "errors_total",
			Help:      "Detector runs that could not query their source",
		}, []string{"detector"}),
		Passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "total",
			Help:      "Finished refresh passes by outcome",
		}, []string{"outcome", "degraded"}),
		Installed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "installed_records",
			Help:      "Installed package versions after the last pass",
		}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "status_changes_total",
			Help:      "Installation directory changes by transition",
		}, []string{"transition"}),
		LastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "last_timestamp_seconds",
			Help:      "Unix time of the last finished pass",
		}),
	}
	r.registry.MustRegister(
		r.StageDuration,
		r.DetectorObserved,
		r.DetectorCleared,
		r.DetectorErrors,
		r.Passes,
		r.Installed,
		r.StatusChanges,
		r.LastPass,
	)
	return r
}

// Registry exposes the recorder's registry as a gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records the duration of one stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveDetector records one detector run.
func (r *Recorder) ObserveDetector(name string, observed, cleared int, err error) {
	r.DetectorObserved.WithLabelValues(name).Add(float64(observed))
	r.DetectorCleared.WithLabelValues(name).Add(float64(cleared))
	if err != nil {
		r.DetectorErrors.WithLabelValues(name).Inc()
	}
}

// ObservePass records the outcome of a pass.
func (r *Recorder) ObservePass(outcome string, installed int, degraded bool) {
	d := "false"
	if degraded {
		d = "true"
	}
	r.Passes.WithLabelValues(outcome, d).Inc()
	r.Installed.Set(float64(installed))
	r.LastPass.SetToCurrentTime()
}

// StatusChanged implements inventory.Observer.
func (r *Recorder) StatusChanged(e inventory.Event) {
	switch {
	case e.Previous == "":
		r.StatusChanges.WithLabelValues("installed").Inc()
	case !e.Installed():
		r.StatusChanges.WithLabelValues("removed").Inc()
	default:
		r.StatusChanges.WithLabelValues("moved").Inc()
	}
}

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(errors.ErrPersistenceWrite, "metrics textfile %s: %v", path, err)
	}
	return nil
}
