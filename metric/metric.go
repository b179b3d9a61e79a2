// Package metric records operation counts, durations and ontology sizes in a
// Prometheus registry that the CLI can export as a textfile.
package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semonto/ontology"
)

// Operation status labels.
const (
	StatusOK         = "ok"
	StatusParseError = "parse_error"
	StatusNotFound   = "not_found"
	StatusInvalid    = "invalid"
	StatusError      = "error"
)

// Metrics holds the semonto collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec   // By operation and status
	duration   *prometheus.HistogramVec // By operation
	warnings   *prometheus.CounterVec   // By operation
	entities   *prometheus.GaugeVec     // By ontology and kind
}

// New creates the collectors and registers them with a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semonto",
			Subsystem: "operation",
			Name:      "total",
			Help:      "Total number of operations by outcome",
		}, []string{"operation", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semonto",
			Subsystem: "operation",
			Name:      "duration_seconds",
			Help:      "Operation duration in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"operation"}),

		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semonto",
			Subsystem: "operation",
			Name:      "warnings_total",
			Help:      "Total number of advisory warnings reported",
		}, []string{"operation"}),

		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "semonto",
			Subsystem: "ontology",
			Name:      "entities",
			Help:      "Number of classes and properties in the last built summary",
		}, []string{"ontology", "kind"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration, m.warnings, m.entities} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// ObserveOperation records one operation that started at start and ended
// with err.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Status(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordWarnings adds n advisory warnings to operation.
func (m *Metrics) RecordWarnings(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.warnings.WithLabelValues(operation).Add(float64(n))
}

// RecordSummary sets the entity gauges of an ontology.
func (m *Metrics) RecordSummary(name string, s *ontology.Summary) {
	if m == nil || s == nil {
		return
	}
	m.entities.WithLabelValues(name, "class").Set(float64(s.Statistics.NumClasses))
	m.entities.WithLabelValues(name, "object_property").Set(float64(s.Statistics.NumObjectProperties))
	m.entities.WithLabelValues(name, "data_property").Set(float64(s.Statistics.NumDataProperties))
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Status classifies an operation error into a status label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case ontology.IsParseError(err):
		return StatusParseError
	case ontology.IsNotFound(err):
		return StatusNotFound
	case ontology.IsValidation(err):
		return StatusInvalid
	default:
		return StatusError
	}
}
