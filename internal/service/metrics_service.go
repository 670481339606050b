package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	cacheErrors     *prometheus.CounterVec
	rollovers       *prometheus.CounterVec
	smsMessages     *prometheus.CounterVec
	exports         *prometheus.CounterVec
	archives        *prometheus.CounterVec
	jobsExhausted   *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
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

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by key shape and result",
	}, []string{"shape", "result"})

	cacheErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Cache backend failures swallowed by the service",
	}, []string{"operation"})

	rollovers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollover_runs_total",
		Help: "Billing rollovers by outcome",
	}, []string{"outcome"})

	smsMessages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sms_messages_total",
		Help: "Result notifications by outcome",
	}, []string{"outcome"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_exports_total",
		Help: "Student exports by format and cache result",
	}, []string{"format", "cache"})

	archives := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_archives_total",
		Help: "Export archive uploads by outcome",
	}, []string{"outcome"})

	jobsExhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_exhausted_total",
		Help: "Background jobs that failed every retry",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheLookups, cacheErrors,
		rollovers, smsMessages, exports, archives, jobsExhausted, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheLookups:    cacheLookups,
		cacheErrors:     cacheErrors,
		rollovers:       rollovers,
		smsMessages:     smsMessages,
		exports:         exports,
		archives:        archives,
		jobsExhausted:   jobsExhausted,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a lookup against key and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(key string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	m.cacheLookups.WithLabelValues(keyShape(key), result).Inc()
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordCacheError counts a swallowed cache failure.
func (m *MetricsService) RecordCacheError(operation string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(operation).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordRollover counts a rollover outcome: completed, resumed, conflict or failed.
func (m *MetricsService) RecordRollover(outcome string) {
	if m == nil {
		return
	}
	m.rollovers.WithLabelValues(outcome).Inc()
}

// RecordSMS counts a notification outcome.
func (m *MetricsService) RecordSMS(success bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "sent"
	}
	m.smsMessages.WithLabelValues(outcome).Inc()
}

// RecordExport counts an export response.
func (m *MetricsService) RecordExport(format string, hit bool) {
	if m == nil {
		return
	}
	cache := "miss"
	if hit {
		cache = "hit"
	}
	m.exports.WithLabelValues(format, cache).Inc()
}

// RecordArchive counts an archive upload outcome.
func (m *MetricsService) RecordArchive(success bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "stored"
	}
	m.archives.WithLabelValues(outcome).Inc()
}

// RecordJobExhausted counts a background job that ran out of retries.
func (m *MetricsService) RecordJobExhausted(kind string) {
	if m == nil {
		return
	}
	m.jobsExhausted.WithLabelValues(kind).Inc()
}

func keyShape(key string) string {
	if idx := strings.Index(key, ":"); idx > 0 {
		return key[:idx]
	}
	return "other"
}
