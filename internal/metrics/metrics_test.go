package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("SUBMIT", "PENDING_APPROVAL")
		m.Decision("1", "APPROVED")
		m.Failure("decide", "STATE")
		m.LockWait(time.Millisecond)
		m.OperationDuration("decide", time.Millisecond)
		m.PublishFailure("proposal_approved")
		m.HTTPRequest("GET", "/health", "200")
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Transition("APPROVE", "APPROVED")
	m.Transition("APPROVE", "APPROVED")
	m.Failure("decide", "AUTHORIZATION")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("APPROVE", "APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("decide", "AUTHORIZATION")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Decision("2", "REJECTED")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `backoffice_approval_decisions_total{outcome="REJECTED",tier="2"} 1`))
}
