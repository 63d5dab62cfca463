package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/api"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(db Pinger) http.Handler {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	handler := api.NewHandler(nil, nil, nil, zap.NewNop())
	return NewRouter(handler, db, reg, m, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestRouter(stubPinger{err: errors.New("down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointRecordsRoutes(t *testing.T) {
	router := newTestRouter(stubPinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// без заголовков пользователя запрос отклоняется до обращения к сервисам
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/5/approve", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `tutor_scheduler_http_request_duration_seconds_count{code="200",method="GET",route="/healthz"} 1`)
	assert.Contains(t, body, `route="/api/v1/bookings/{bookingId}/approve"`)
	assert.Contains(t, body, `code="401"`)
}
