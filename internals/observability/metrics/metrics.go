// Package metrics menyediakan metrik Prometheus untuk submission audit,
// transisi status response, dan task remediasi.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuditMetrics: semua method aman dipanggil pada receiver nil
// (service di test tidak wajib memasang metrik).
type AuditMetrics struct {
	SubmissionsTotal     *prometheus.CounterVec
	SubmissionRejected   *prometheus.CounterVec
	CompliancePercentage *prometheus.HistogramVec
	StatusTransitions    *prometheus.CounterVec
	TasksSpawned         *prometheus.CounterVec
	TasksOverdueMarked   prometheus.Counter
	FormCacheLookups     *prometheus.CounterVec
	ReportRenders        *prometheus.CounterVec

	registry *prometheus.Registry
}

// New membuat registry baru + mendaftarkan semua metrik.
func New() (*AuditMetrics, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(registry *prometheus.Registry) (*AuditMetrics, error) {
	m := &AuditMetrics{registry: registry}
	m.init()
	collectors := []prometheus.Collector{
		m.SubmissionsTotal,
		m.SubmissionRejected,
		m.CompliancePercentage,
		m.StatusTransitions,
		m.TasksSpawned,
		m.TasksOverdueMarked,
		m.FormCacheLookups,
		m.ReportRenders,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register audit metrics: %w", err)
		}
	}
	return m, nil
}

func (m *AuditMetrics) init() {
	m.SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_submissions_total",
			Help: "Total scored submissions by form type and initial status",
		},
		[]string{"form_type", "status"},
	)
	m.SubmissionRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_submissions_rejected_total",
			Help: "Submissions rejected before scoring, by reason",
		},
		[]string{"reason"}, // validation, form_not_found, persist
	)
	m.CompliancePercentage = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_compliance_percentage",
			Help:    "Distribution of compliance percentage per submission",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"form_type"},
	)
	m.StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_response_status_transitions_total",
			Help: "Response status transitions by source and target status",
		},
		[]string{"from", "to"},
	)
	m.TasksSpawned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_remediation_tasks_spawned_total",
			Help: "Remediation task requests by outcome",
		},
		[]string{"outcome"}, // created, error
	)
	m.TasksOverdueMarked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_remediation_tasks_overdue_marked_total",
			Help: "Tasks flagged overdue by the scheduler sweep",
		},
	)
	m.FormCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_form_cache_lookups_total",
			Help: "Form definition cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)
	m.ReportRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_report_renders_total",
			Help: "Report render attempts by outcome",
		},
		[]string{"outcome"}, // ok, error, skipped
	)
}

func (m *AuditMetrics) RecordSubmission(formType, status string, compliance float64) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(formType, status).Inc()
	m.CompliancePercentage.WithLabelValues(formType).Observe(compliance)
}

func (m *AuditMetrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.SubmissionRejected.WithLabelValues(reason).Inc()
}

// RecordTransition: from == to tidak dicatat.
func (m *AuditMetrics) RecordTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *AuditMetrics) RecordTaskSpawn(err error) {
	if m == nil {
		return
	}
	outcome := "created"
	if err != nil {
		outcome = "error"
	}
	m.TasksSpawned.WithLabelValues(outcome).Inc()
}

func (m *AuditMetrics) RecordOverdue(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TasksOverdueMarked.Add(float64(n))
}

func (m *AuditMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.FormCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.FormCacheLookups.WithLabelValues("miss").Inc()
}

func (m *AuditMetrics) RecordRender(outcome string) {
	if m == nil {
		return
	}
	m.ReportRenders.WithLabelValues(outcome).Inc()
}

// Handler: endpoint /metrics untuk registry ini.
func (m *AuditMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *AuditMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
