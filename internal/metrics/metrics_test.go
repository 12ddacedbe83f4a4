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

func TestRecorders_CountByLabel(t *testing.T) {
	m := New()

	m.RecordScan("ws", "OK")
	m.RecordScan("ws", "OK")
	m.RecordScan("http", "EAN_NOT_IN_ORDER")
	m.RecordRoute(3)
	m.RecordOrderCompleted()
	m.RecordReplenishmentCreated("cron")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("ws", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("http", "EAN_NOT_IN_ORDER")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutesBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReplenishmentsCreated.WithLabelValues("cron")))
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordScan("ws", "OK")
		m.RecordRoute(1)
		m.RecordOrderCompleted()
		m.RecordReplenishmentCreated("manual")
		m.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
		m.RecordJob("email", "ok")
		m.SetCircuitBreakerState("smtp", 1)
		m.IncInFlight()
		m.DecInFlight()
	})
}

func TestHandler_ExposesNamespace(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/v1/orders", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "koroshi_sms_http_requests_total"))
}
