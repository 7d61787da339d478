package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-planner-api/pkg/jobs"
)

func TestMetricsServiceRecordsPlannerRuns(t *testing.T) {
	m := NewMetricsService()

	m.ObservePlannerRun(OutcomeFound, 3, 5*time.Millisecond)
	m.ObservePlannerRun(OutcomeRejected, 0, 0)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordNarration(true)
	m.RecordRunPersisted(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.plannerRuns.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.plannerRuns.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.narratorCalls.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordedRuns.WithLabelValues("error")))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/planner/recommendations", http.StatusOK, 10*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "goroutines_total")
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObservePlannerRun(OutcomeFound, 1, time.Millisecond)
	m.RecordNarration(false)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsServiceObserveQueue(t *testing.T) {
	m := NewMetricsService()
	m.ObserveQueue("planner-runs", func() jobs.Stats {
		return jobs.Stats{Processed: 3, Failed: 1, Dropped: 2, Pending: 4}
	})

	count, err := testutil.GatherAndCount(m.Registry(), "queue_jobs_pending", "queue_jobs_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `queue_jobs_processed_total{queue="planner-runs"} 3`)
	assert.Contains(t, body, `queue_jobs_failed_total{queue="planner-runs"} 1`)
	assert.Contains(t, body, `queue_jobs_dropped_total{queue="planner-runs"} 2`)
	assert.Contains(t, body, `queue_jobs_pending{queue="planner-runs"} 4`)
}
