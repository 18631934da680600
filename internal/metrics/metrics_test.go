package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuthEvent_CountsByEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthEvent(EventLoginSuccess)
	c.RecordAuthEvent(EventLoginFailure)
	c.RecordAuthEvent(EventLoginFailure)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.authEvents.WithLabelValues(EventLoginSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.authEvents.WithLabelValues(EventLoginFailure)))
}

func TestRecordAccessDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAccessDecision("denied")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.accessDecisions.WithLabelValues("denied")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.accessDecisions.WithLabelValues("owner")))
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/projects/:id", http.StatusForbidden, 15*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/projects/:id", "403")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.httpLatency))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuthEvent(EventRegister)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `canvass_auth_events_total{event="register"} 1`)
}

func TestNop_SatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordAuthEvent(EventLogout)
	r.RecordAccessDecision("member")
	r.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
}
