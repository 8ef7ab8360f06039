package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Catalog operation metrics
	catalogOperationsTotal   *prometheus.CounterVec
	catalogOperationDuration *prometheus.HistogramVec
	catalogRecordsTotal      prometheus.Gauge
	catalogDataSizeBytes     prometheus.Gauge

	// Import metrics
	importedRecordsTotal prometheus.Counter
	skippedRecordsTotal  prometheus.Counter

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		// HTTP request metrics
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcdb_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marcdb_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marcdb_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		// Catalog operation metrics
		catalogOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcdb_catalog_operations_total",
				Help: "Total number of catalog operations",
			},
			[]string{"operation", "status"},
		),

		catalogOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marcdb_catalog_operation_duration_seconds",
				Help:    "Catalog operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		catalogRecordsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "marcdb_catalog_records_total",
				Help: "Total number of records in the catalog",
			},
		),

		catalogDataSizeBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "marcdb_catalog_data_size_bytes",
				Help: "Total serialized size of catalog records in bytes",
			},
		),

		importedRecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "marcdb_imported_records_total",
				Help: "Total number of records stored by imports",
			},
		),

		skippedRecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "marcdb_skipped_records_total",
				Help: "Total number of malformed records skipped by imports",
			},
		),

		// Authentication metrics
		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcdb_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		// Health check metrics
		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcdb_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCatalogOperation records a catalog operation
func (m *Metrics) RecordCatalogOperation(operation string, success bool, duration time.Duration) {
	m.catalogOperationsTotal.WithLabelValues(operation, status(success)).Inc()
	m.catalogOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateCatalogStats updates catalog statistics
func (m *Metrics) UpdateCatalogStats(records int, dataSize int64) {
	m.catalogRecordsTotal.Set(float64(records))
	m.catalogDataSizeBytes.Set(float64(dataSize))
}

// RecordImport records the outcome of an import
func (m *Metrics) RecordImport(records, skipped int) {
	m.importedRecordsTotal.Add(float64(records))
	m.skippedRecordsTotal.Add(float64(skipped))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequestsTotal.WithLabelValues(status(success)).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	m.healthChecksTotal.WithLabelValues(status(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Record request in flight
		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get("X-API-Key") != ""

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next(h).ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

func status(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
