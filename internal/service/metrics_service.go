package service

import (
	"fmt"
	"net/http"
	"runtime"
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
	recordsTotal    *prometheus.CounterVec
	noticesSent     prometheus.Counter
	noticesFailed   prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the service's Prometheus collectors.
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

	recordsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_records_total",
		Help: "Attendance records written, labelled by status",
	}, []string{"status"})

	noticesSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_notices_sent_total",
		Help: "Guardian notices delivered to the gateway",
	})

	noticesFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_notices_failed_total",
		Help: "Guardian notices that exhausted their retries",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, recordsTotal, noticesSent, noticesFailed, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		recordsTotal:    recordsTotal,
		noticesSent:     noticesSent,
		noticesFailed:   noticesFailed,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler returns the Prometheus scrape handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordAttendance counts one attendance write.
func (s *MetricsService) RecordAttendance(status string) {
	s.recordsTotal.WithLabelValues(status).Inc()
}

// NoticeSent counts one delivered guardian notice.
func (s *MetricsService) NoticeSent() {
	s.noticesSent.Inc()
}

// NoticeFailed counts one permanently failed guardian notice.
func (s *MetricsService) NoticeFailed() {
	s.noticesFailed.Inc()
}

// CacheHit counts a dashboard cache hit.
func (s *MetricsService) CacheHit() {
	s.cacheHits.Inc()
}

// CacheMiss counts a dashboard cache miss.
func (s *MetricsService) CacheMiss() {
	s.cacheMisses.Inc()
}
