package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilReceiverIsSafe(t *testing.T) {
	// Hosts without a scrape endpoint pass a nil *Metrics around.
	var m *Metrics

	m.RecordNotify("broadcast", "success", 0.1)
	m.RecordWebhook("health_check", "success")
	m.RecordDispatch("push", 0.05)
	m.RecordFanoutFailure()
	m.SetRegistrySize(3)
}

func TestRecordNotify(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordNotify("broadcast", "success", 0.25)
	m.RecordNotify("broadcast", "unauthorized", 0)

	if got := testutil.ToFloat64(m.NotifyRequestsTotal.WithLabelValues("broadcast", "success")); got != 1 {
		t.Errorf("success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.NotifyRequestsTotal.WithLabelValues("broadcast", "unauthorized")); got != 1 {
		t.Errorf("unauthorized counter = %v, want 1", got)
	}
}

func TestSetRegistrySize(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.SetRegistrySize(7)
	if got := testutil.ToFloat64(m.RegistrySize); got != 7 {
		t.Errorf("registry gauge = %v, want 7", got)
	}
}
