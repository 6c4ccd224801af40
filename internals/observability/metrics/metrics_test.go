package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditMetrics(t *testing.T) {
	m, err := NewWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordSubmission("Audit", "Pending Corrective Action", 50)
	m.RecordSubmission("Audit", "Pending Corrective Action", 75)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("Audit", "Pending Corrective Action")))

	m.RecordTransition("Needs Auditor Review", "Closed")
	m.RecordTransition("Closed", "Closed")
	assert.Equal(t, 1, testutil.CollectAndCount(m.StatusTransitions))

	m.RecordTaskSpawn(nil)
	m.RecordTaskSpawn(errors.New("down"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TasksSpawned.WithLabelValues("error")))

	m.RecordOverdue(3)
	m.RecordOverdue(0)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.TasksOverdueMarked))

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.FormCacheLookups.WithLabelValues("miss")))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewWithRegistry(reg)
	require.NoError(t, err)
	_, err = NewWithRegistry(reg)
	assert.Error(t, err)
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *AuditMetrics
	assert.NotPanics(t, func() {
		m.RecordSubmission("Audit", "Closed", 10)
		m.RecordRejected("validation")
		m.RecordTransition("a", "b")
		m.RecordTaskSpawn(nil)
		m.RecordOverdue(1)
		m.RecordCacheLookup(true)
		m.RecordRender("ok")
		_ = m.Handler()
	})
}
