package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/event-gate/internal/domain"
)

func TestMetrics_GateDecisions(t *testing.T) {
	m := NewMetrics()
	m.RecordGateDecision(domain.AdmissionAllowed)
	m.RecordGateDecision(domain.AdmissionReplay)
	m.RecordGateDecision(domain.AdmissionReplay)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("replay")))
}

func TestMetrics_RequestsAndErrors(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/login", "POST", 401, 10*time.Millisecond)
	m.RecordError("/login", "POST", "INVALID_CREDENTIALS")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/login", "POST", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/login", "POST", "INVALID_CREDENTIALS")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordGateDecision(domain.AdmissionAllowed)
}
