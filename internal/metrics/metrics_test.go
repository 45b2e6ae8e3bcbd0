package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveTicketResolution("authenticated")
	m.ObserveTicketResolution("authenticated")
	m.ObserveTicketResolution("ticket_expired")
	m.ObserveVersionCheck(2, "VERSION_TOO_LOW")
	m.ObserveRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.ticketResolutions.WithLabelValues("authenticated")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ticketResolutions.WithLabelValues("ticket_expired")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.versionChecks.WithLabelValues("2", "VERSION_TOO_LOW")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveTicketResolution("no_ticket")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `community_auth_ticket_resolutions_total{outcome="no_ticket"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveTicketResolution("authenticated")
	m.ObserveVersionCheck(1, "allowed")
	m.ObserveRequest(http.MethodGet, http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
