package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ExecutionSucceeded()
	m.ExecutionSucceeded()
	m.ExecutionFailed()
	if got := testutil.ToFloat64(m.executionsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success executions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.executionsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed executions = %v, want 1", got)
	}

	m.SetActiveSchedules(5)
	if got := testutil.ToFloat64(m.activeSchedules); got != 5 {
		t.Errorf("active schedules = %v, want 5", got)
	}

	m.DownloadSubmitted()
	if got := testutil.ToFloat64(m.submittedTotal); got != 1 {
		t.Errorf("submitted = %v, want 1", got)
	}

	m.RecordsPruned(3)
	m.RecordsPruned(2)
	if got := testutil.ToFloat64(m.prunedTotal); got != 5 {
		t.Errorf("pruned = %v, want 5", got)
	}

	m.SetAttachedClients(2)
	m.SetAttachedClients(1)
	if got := testutil.ToFloat64(m.attachedClients); got != 1 {
		t.Errorf("attached clients = %v, want 1", got)
	}
}

func TestMetricsRegisterTwice(t *testing.T) {
	// Separate registries must not collide.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
