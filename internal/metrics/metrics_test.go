package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letraz-autoapply/pkg/models"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveApplication(models.OutcomeSubmitted, 12*time.Second)
	m.ObserveApplication(models.OutcomeSubmitted, 20*time.Second)
	m.ObserveApplication(models.OutcomeNoEasyApply, time.Second)
	m.SetSearch(models.SearchStats{Seen: 25, Matched: 3, Total: 120})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Applications.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Applications.WithLabelValues("no_easy_apply")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.SearchSeen))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.SearchTotal))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `autoapply_applications_total{outcome="submitted"} 2`)
	assert.Contains(t, rec.Body.String(), "autoapply_apply_duration_seconds_count 3")
}
