package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letraz-autoapply/internal/api/handlers"
	"letraz-autoapply/internal/api/routes"
	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/logging"
	"letraz-autoapply/internal/metrics"
	"letraz-autoapply/internal/store"
	"letraz-autoapply/pkg/models"
)

type fakeRun struct{}

func (fakeRun) Stats() models.RunStats {
	return models.RunStats{
		RunID:     "run-1",
		Search:    models.SearchStats{Seen: 25, Matched: 3, Total: 1250, GeoID: "103644278"},
		Yielded:   3,
		Submitted: 2,
		Failed:    1,
	}
}

func (fakeRun) GuardStats() map[string]interface{} {
	return map[string]interface{}{"circuit_state": "closed", "per_hour": 30}
}

type ledger struct {
	store.NopStore
	records []models.ApplicationRecord
	err     error
	limit   int
}

func (l *ledger) Recent(_ context.Context, limit int) ([]models.ApplicationRecord, error) {
	l.limit = limit
	return l.records, l.err
}

func newTestServer(t *testing.T, deps routes.Deps) *Server {
	t.Helper()
	cfg := config.Default()
	return NewServer(cfg, deps, logging.NewNopLogger())
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		s := newTestServer(t, routes.Deps{Checks: map[string]handlers.HealthCheck{
			"browser": func() bool { return true },
		}})

		rec := get(t, s, "/health")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

		var body models.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, map[string]string{"api": "ok", "browser": "ok"}, body.Checks)
	})

	t.Run("failing check", func(t *testing.T) {
		s := newTestServer(t, routes.Deps{Checks: map[string]handlers.HealthCheck{
			"browser": func() bool { return false },
		}})

		rec := get(t, s, "/health")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body models.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "failing", body.Checks["browser"])
	})
}

func TestStatus(t *testing.T) {
	l := &ledger{records: []models.ApplicationRecord{{
		JobID:       "4012345678",
		Title:       "Backend Engineer",
		Outcome:     models.OutcomeSubmitted,
		RunID:       "run-1",
		AttemptedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}}}
	s := newTestServer(t, routes.Deps{Run: fakeRun{}, Store: l})

	rec := get(t, s, "/status?recent=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, l.limit)

	var body models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, fakeRun{}.Stats(), body.Run)
	assert.Equal(t, "closed", body.Guard["circuit_state"])
	require.Len(t, body.Recent, 1)
	assert.Equal(t, models.OutcomeSubmitted, body.Recent[0].Outcome)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), body.RequestID)
}

func TestStatus_DefaultsAndErrors(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		l := &ledger{}
		s := newTestServer(t, routes.Deps{Run: fakeRun{}, Store: l})

		rec := get(t, s, "/status")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 20, l.limit)
		assert.Contains(t, rec.Body.String(), `"recent":[]`)
	})

	t.Run("limit out of range", func(t *testing.T) {
		s := newTestServer(t, routes.Deps{Store: &ledger{}})

		rec := get(t, s, "/status?recent=500")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid_query", body.Error)
	})

	t.Run("limit not a number", func(t *testing.T) {
		s := newTestServer(t, routes.Deps{Store: &ledger{}})

		rec := get(t, s, "/status?recent=lots")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ledger failure", func(t *testing.T) {
		s := newTestServer(t, routes.Deps{Store: &ledger{err: errors.New("redis down")}})

		rec := get(t, s, "/status")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "ledger_unavailable")
	})

	t.Run("no runner", func(t *testing.T) {
		s := newTestServer(t, routes.Deps{})

		rec := get(t, s, "/status")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.PostingsYielded.Add(4)
	s := newTestServer(t, routes.Deps{Metrics: m.Handler()})

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "autoapply_postings_yielded_total 4")
}

func TestMetricsEndpoint_AbsentWithoutMetrics(t *testing.T) {
	s := newTestServer(t, routes.Deps{})

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Address(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9090
	s := NewServer(cfg, routes.Deps{}, logging.NewNopLogger())
	assert.Equal(t, "0.0.0.0:9090", s.Address())
}
