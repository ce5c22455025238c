package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
// It also implements store.Recorder.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
	snapshots       *prometheus.CounterVec
	revision        prometheus.Gauge
	eventClients    prometheus.Gauge

	requestCount         uint64
	requestDurationTotal uint64
	persistCount         uint64
	persistFailures      uint64
	persistDurationTotal uint64
	snapshotsApplied     uint64
	snapshotsIgnored     uint64
	revisionValue        int64
	clientCount          int64
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

	persistDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "document_persist_duration_seconds",
		Help:    "Duration of whole-document saves",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	snapshots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_snapshots_total",
		Help: "Backend snapshots received, by outcome",
	}, []string{"outcome"})

	revision := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_revision",
		Help: "Revision of the committed document",
	})

	eventClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "change_event_clients",
		Help: "Connected change event subscribers",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, persistDuration, snapshots, revision, eventClients, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		persistDuration: persistDuration,
		snapshots:       snapshots,
		revision:        revision,
		eventClients:    eventClients,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObservePersist records one backend save.
func (m *MetricsService) ObservePersist(duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		atomic.AddUint64(&m.persistFailures, 1)
	}
	m.persistDuration.WithLabelValues(result).Observe(duration.Seconds())
	atomic.AddUint64(&m.persistCount, 1)
	atomic.AddUint64(&m.persistDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveSnapshot records whether a pushed snapshot replaced the document.
func (m *MetricsService) ObserveSnapshot(applied bool) {
	if m == nil {
		return
	}
	if applied {
		m.snapshots.WithLabelValues("applied").Inc()
		atomic.AddUint64(&m.snapshotsApplied, 1)
		return
	}
	m.snapshots.WithLabelValues("ignored").Inc()
	atomic.AddUint64(&m.snapshotsIgnored, 1)
}

// SetRevision tracks the committed document revision.
func (m *MetricsService) SetRevision(revision int64) {
	if m == nil {
		return
	}
	m.revision.Set(float64(revision))
	atomic.StoreInt64(&m.revisionValue, revision)
}

// AddEventClients adjusts the connected subscriber gauge by delta.
func (m *MetricsService) AddEventClients(delta int) {
	if m == nil {
		return
	}
	m.eventClients.Add(float64(delta))
	atomic.AddInt64(&m.clientCount, int64(delta))
}

// Snapshot returns aggregated metrics suitable for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	persists := atomic.LoadUint64(&m.persistCount)
	persistDuration := atomic.LoadUint64(&m.persistDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgPersistMs float64
	if persists > 0 {
		avgPersistMs = float64(persistDuration) / float64(persists) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		PersistTotal:             persists,
		PersistFailures:          atomic.LoadUint64(&m.persistFailures),
		AveragePersistDurationMs: avgPersistMs,
		SnapshotsApplied:         atomic.LoadUint64(&m.snapshotsApplied),
		SnapshotsIgnored:         atomic.LoadUint64(&m.snapshotsIgnored),
		Revision:                 atomic.LoadInt64(&m.revisionValue),
		EventClients:             atomic.LoadInt64(&m.clientCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
