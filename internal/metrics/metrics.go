// Package metrics records validation outcomes in a Prometheus registry that
// can be dumped in text exposition format for the node-exporter textfile
// collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// Result labels for calmlint_validations_total.
const (
	ResultValid      = "valid"
	ResultInvalid    = "invalid"
	ResultStructural = "structural_error"
)

// Recorder owns a private registry so concurrent runs and tests do not share
// global state.
type Recorder struct {
	reg         *prometheus.Registry
	validations *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewRecorder returns a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calmlint_validations_total",
			Help: "Documents validated, by result",
		}, []string{"result"}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calmlint_diagnostics_total",
			Help: "Diagnostics reported, by rule and severity",
		}, []string{"rule", "severity"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "calmlint_validation_duration_seconds",
			Help:    "Time spent decoding and validating one document",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// Observe records one validation pass. structural is true when the document
// was rejected before any rule ran.
func (r *Recorder) Observe(diags []calm.Diagnostic, structural bool, elapsed time.Duration) {
	r.duration.Observe(elapsed.Seconds())
	switch {
	case structural:
		r.validations.WithLabelValues(ResultStructural).Inc()
	case hasErrors(diags):
		r.validations.WithLabelValues(ResultInvalid).Inc()
	default:
		r.validations.WithLabelValues(ResultValid).Inc()
	}
	for _, d := range diags {
		rule := d.Rule
		if rule == "" {
			rule = string(d.Code)
		}
		r.diagnostics.WithLabelValues(rule, string(d.Severity)).Inc()
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

func hasErrors(diags []calm.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == calm.SeverityError {
			return true
		}
	}
	return false
}
