// Package metrics records submission counters for node-exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "glidein"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDryRun  = "dry_run"
)

// Recorder owns a private registry so a run only reports its own series.
type Recorder struct {
	registry       *prometheus.Registry
	submissions    *prometheus.CounterVec
	rendered       *prometheus.CounterVec
	lastSubmission *prometheus.GaugeVec
	now            func() time.Time
}

func New() *Recorder {
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of glidein submissions by result",
	}, []string{"site", "result"})
	rendered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rendered_scripts_total",
		Help:      "Total number of rendered glidein submit files",
	}, []string{"site"})
	lastSubmission := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_submission_timestamp_seconds",
		Help:      "Unix time of the last successful glidein submission",
	}, []string{"site"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(submissions, rendered, lastSubmission)

	return &Recorder{
		registry:       registry,
		submissions:    submissions,
		rendered:       rendered,
		lastSubmission: lastSubmission,
		now:            time.Now,
	}
}

func (r *Recorder) Rendered(site string) {
	r.rendered.WithLabelValues(site).Inc()
}

// Submitted counts one submission attempt with the given result.
func (r *Recorder) Submitted(site, result string) {
	r.submissions.WithLabelValues(site, result).Inc()

	if result == ResultSuccess {
		r.lastSubmission.WithLabelValues(site).Set(float64(r.now().Unix()))
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}

	return nil
}
