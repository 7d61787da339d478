package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/leave-planner-api/pkg/jobs"
)

// Planner run outcomes used as metric labels.
const (
	OutcomeFound    = "found"
	OutcomeNone     = "none"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// MetricsService encapsulates Prometheus instrumentation for the planner API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	plannerRuns     *prometheus.CounterVec
	plannerDuration prometheus.Observer
	plannerWindows  prometheus.Observer
	narratorCalls   *prometheus.CounterVec
	recordedRuns    *prometheus.CounterVec
}

// NewMetricsService registers the planner collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	plannerRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_runs_total",
		Help: "Recommendation runs by outcome",
	}, []string{"outcome"})

	plannerDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_run_duration_seconds",
		Help:    "Time spent generating, simulating and ranking windows",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	plannerWindows := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_windows_returned",
		Help:    "Number of safe windows returned per run",
		Buckets: []float64{0, 1, 2, 3, 5, 10},
	})

	narratorCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "narrator_requests_total",
		Help: "Narration requests by result",
	}, []string{"result"})

	recordedRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_run_records_total",
		Help: "Run history writes by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups,
		plannerRuns, plannerDuration, plannerWindows, narratorCalls, recordedRuns, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		plannerRuns:     plannerRuns,
		plannerDuration: plannerDuration,
		plannerWindows:  plannerWindows,
		narratorCalls:   narratorCalls,
		recordedRuns:    recordedRuns,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveQueue exports a background queue's counters and backlog, read from
// stats at scrape time. Each queue name may be registered once.
func (m *MetricsService) ObserveQueue(name string, stats func() jobs.Stats) {
	if m == nil || stats == nil {
		return
	}
	labels := prometheus.Labels{"queue": name}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "queue_jobs_processed_total",
			Help:        "Jobs handled successfully",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Processed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "queue_jobs_failed_total",
			Help:        "Jobs that exhausted their retries",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Failed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "queue_jobs_dropped_total",
			Help:        "Jobs rejected because the buffer was full",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Dropped) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "queue_jobs_pending",
			Help:        "Jobs waiting in the buffer",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Pending) }),
	)
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObservePlannerRun records the outcome of an engine run. Duration and
// window counts are only observed for runs that reached the engine.
func (m *MetricsService) ObservePlannerRun(outcome string, windows int, duration time.Duration) {
	if m == nil {
		return
	}
	m.plannerRuns.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFound || outcome == OutcomeNone {
		m.plannerDuration.Observe(duration.Seconds())
		m.plannerWindows.Observe(float64(windows))
	}
}

// RecordNarration counts narrator calls; fallback marks degraded responses.
func (m *MetricsService) RecordNarration(fallback bool) {
	if m == nil {
		return
	}
	if fallback {
		m.narratorCalls.WithLabelValues("fallback").Inc()
		return
	}
	m.narratorCalls.WithLabelValues("ok").Inc()
}

// RecordRunPersisted counts run history writes.
func (m *MetricsService) RecordRunPersisted(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.recordedRuns.WithLabelValues("error").Inc()
		return
	}
	m.recordedRuns.WithLabelValues("ok").Inc()
}
