// Package metrics holds the prometheus collectors of the platform.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	ResultadoNueva       = "nueva"
	ResultadoReemplazada = "reemplazada"
	ResultadoIncompleta  = "incompleta"
	ResultadoRechazada   = "rechazada"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	blobOps     *prometheus.CounterVec
	bulkRows    *prometheus.CounterVec
	tasks       *prometheus.GaugeVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "plataforma",
				Name:      "submissions_total",
				Help:      "Submissions by module and outcome",
			}, []string{"modulo", "resultado"},
		),
		blobOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "plataforma",
				Name:      "blob_operations_total",
				Help:      "Object store operations by backend, operation and status",
			}, []string{"backend", "op", "status"},
		),
		bulkRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "plataforma",
				Name:      "bulk_rows_total",
				Help:      "CSV rows processed by the bulk tool",
			}, []string{"op", "resultado"},
		),
		tasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "plataforma",
				Name:      "tasks_running",
				Help:      "Background tasks currently running",
			}, []string{"comando"},
		),
	}
}

// Submission counts one submission attempt
func (m *Metrics) Submission(modulo, resultado string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(modulo, resultado).Inc()
}

// BlobOp counts one object store call
func (m *Metrics) BlobOp(backend, op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.blobOps.WithLabelValues(backend, op, status).Inc()
}

// BulkRow counts one CSV row
func (m *Metrics) BulkRow(op, resultado string) {
	if m == nil {
		return
	}
	m.bulkRows.WithLabelValues(op, resultado).Inc()
}

// TaskStarted and TaskFinished track running background tasks
func (m *Metrics) TaskStarted(comando string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(comando).Inc()
}

func (m *Metrics) TaskFinished(comando string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(comando).Dec()
}
