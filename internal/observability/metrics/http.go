package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsTotal     *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	nonEmptyFields     *prometheus.HistogramVec
	ocrRequestsTotal   *prometheus.CounterVec
	ocrFallbackTotal   *prometheus.CounterVec
	ocrDuration        *prometheus.HistogramVec
	batchSize          *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintake",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docintake",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total documents run through the extraction pipeline.",
		},
		[]string{"service", "document_type", "valid"},
	)
	validationFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "pipeline",
			Name:      "validation_failures_total",
			Help:      "Total critical-field validation failures by document type.",
		},
		[]string{"service", "document_type"},
	)
	nonEmptyFields := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintake",
			Subsystem: "pipeline",
			Name:      "non_empty_fields",
			Help:      "Distribution of non-empty metadata fields per document.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 29},
		},
		[]string{"service", "document_type"},
	)
	ocrRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "ocr",
			Name:      "requests_total",
			Help:      "Total OCR backend calls by engine and outcome.",
		},
		[]string{"service", "engine", "outcome"},
	)
	ocrFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "ocr",
			Name:      "remote_fallback_total",
			Help:      "Total remote OCR failures degraded to the local engine.",
		},
		[]string{"service"},
	)
	ocrDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintake",
			Subsystem: "ocr",
			Name:      "duration_seconds",
			Help:      "OCR call duration in seconds by engine.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service", "engine"},
	)
	batchSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintake",
			Subsystem: "pipeline",
			Name:      "batch_size",
			Help:      "Distribution of documents per batch request.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsTotal,
		validationFailures,
		nonEmptyFields,
		ocrRequestsTotal,
		ocrFallbackTotal,
		ocrDuration,
		batchSize,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		documentsTotal:     documentsTotal,
		validationFailures: validationFailures,
		nonEmptyFields:     nonEmptyFields,
		ocrRequestsTotal:   ocrRequestsTotal,
		ocrFallbackTotal:   ocrFallbackTotal,
		ocrDuration:        ocrDuration,
		batchSize:          batchSize,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/") && path != "/v1/documents/extract" && path != "/v1/documents/batch":
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// RecordDocument counts one pipeline run and its field yield.
func (m *HTTPServerMetrics) RecordDocument(service, documentType string, valid bool, nonEmptyFields int) {
	m.documentsTotal.WithLabelValues(service, documentType, strconv.FormatBool(valid)).Inc()
	m.nonEmptyFields.WithLabelValues(service, documentType).Observe(float64(nonEmptyFields))
	if !valid {
		m.validationFailures.WithLabelValues(service, documentType).Inc()
	}
}

func (m *HTTPServerMetrics) RecordOCRRequest(service, engine string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ocrRequestsTotal.WithLabelValues(service, engine, outcome).Inc()
	m.ocrDuration.WithLabelValues(service, engine).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordOCRFallback(service string) {
	m.ocrFallbackTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordBatch(service string, size int) {
	m.batchSize.WithLabelValues(service).Observe(float64(size))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
