package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ImplementsGatherer(t *testing.T) {
	var _ prometheus.Gatherer = NewRegistry()
}

func TestRegistry_RecordRequest_StatusClasses(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{302, "3xx"},
		{403, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordRequest("GET", "GET /dashboard", tt.status, 0.01)
			assert.Equal(t, 1.0, testutil.ToFloat64(
				reg.httpRequestsTotal.WithLabelValues("GET", "GET /dashboard", tt.expected)))
		})
	}
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()
	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.httpRequestsInFlight))
}

func TestRegistry_ObserveBackendCall(t *testing.T) {
	reg := NewRegistry()
	reg.ObserveBackendCall("GET /auth/users/me", "ok", 120*time.Millisecond)
	reg.ObserveBackendCall("GET /auth/users/me", "unauthorized", 10*time.Millisecond)
	reg.ObserveBackendCall("GET /auth/users/me", "ok", 80*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.backendCalls.WithLabelValues("GET /auth/users/me", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.backendCalls.WithLabelValues("GET /auth/users/me", "unauthorized")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "swingdash_backend_call_duration_seconds" {
			h := mf.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(3), h.GetSampleCount())
			assert.InDelta(t, 0.21, h.GetSampleSum(), 0.001)
			return
		}
	}
	t.Fatal("expected backend duration histogram")
}

func TestRegistry_BusinessMetrics(t *testing.T) {
	reg := NewRegistry()

	reg.RecordGating("signal", "locked")
	reg.RecordGating("signal", "locked")
	reg.RecordSession("login")
	reg.RecordScan("lite", "ok")
	reg.RecordAlert("test", "failed")
	reg.ProJobStarted()
	reg.ProJobStarted()
	reg.ProJobFinished()

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.gatingDecisions.WithLabelValues("signal", "locked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.sessionEvents.WithLabelValues("login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.scansTotal.WithLabelValues("lite", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.alertsSent.WithLabelValues("test", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.proJobsActive))
}
