// Package metrics exposes Prometheus instrumentation on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	MetricsNamespace       = "olytutor"
	MetricsSubsystemSystem = "system"
	MetricsSubsystemHTTP   = "http"
	MetricsSubsystemLLM    = "llm"
	MetricsSubsystemFormat = "format"

	MetricsVersionLabel = "version"
)

// Metrics collects service instrumentation. It satisfies llm.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	startTime prometheus.Gauge
	info      prometheus.Gauge

	apiTime   *prometheus.HistogramVec
	httpTotal prometheus.Counter
	httpErrs  prometheus.Counter

	llmRequests       *prometheus.CounterVec
	llmTokensSent     *prometheus.CounterVec
	llmTokensReceived *prometheus.CounterVec
	llmLatency        *prometheus.HistogramVec

	segments *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry.
func New(version string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: MetricsNamespace,
	}))
	m.registry.MustRegister(collectors.NewGoCollector())

	m.startTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSystem,
		Name:      "start_timestamp_seconds",
		Help:      "The time the server started.",
	})
	m.startTime.SetToCurrentTime()
	m.registry.MustRegister(m.startTime)

	m.info = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   MetricsNamespace,
		Subsystem:   MetricsSubsystemSystem,
		Name:        "info",
		Help:        "The server version.",
		ConstLabels: prometheus.Labels{MetricsVersionLabel: version},
	})
	m.info.Set(1)
	m.registry.MustRegister(m.info)

	m.apiTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTP,
		Name:      "request_duration_seconds",
		Help:      "Time to execute the api handler.",
	}, []string{"route", "method", "status_code"})
	m.registry.MustRegister(m.apiTime)

	m.httpTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTP,
		Name:      "requests_total",
		Help:      "The total number of http API requests.",
	})
	m.registry.MustRegister(m.httpTotal)

	m.httpErrs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemHTTP,
		Name:      "errors_total",
		Help:      "The total number of http API errors.",
	})
	m.registry.MustRegister(m.httpErrs)

	m.llmRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemLLM,
		Name:      "requests_total",
		Help:      "The total number of LLM requests made.",
	}, []string{"model", "purpose", "result"})
	m.registry.MustRegister(m.llmRequests)

	m.llmTokensSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemLLM,
		Name:      "tokens_sent_total",
		Help:      "The total number of tokens sent.",
	}, []string{"model", "purpose"})
	m.registry.MustRegister(m.llmTokensSent)

	m.llmTokensReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemLLM,
		Name:      "tokens_received_total",
		Help:      "The total number of tokens received.",
	}, []string{"model", "purpose"})
	m.registry.MustRegister(m.llmTokensReceived)

	m.llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemLLM,
		Name:      "request_duration_seconds",
		Help:      "LLM request latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"model", "purpose"})
	m.registry.MustRegister(m.llmLatency)

	m.segments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemFormat,
		Name:      "segments_total",
		Help:      "The total number of math segments formatted.",
	}, []string{"kind"})
	m.registry.MustRegister(m.segments)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLLMRequest records one completed LLM call.
func (m *Metrics) ObserveLLMRequest(model, purpose string, success bool, inputTokens, outputTokens int, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	m.llmRequests.WithLabelValues(model, purpose, result).Inc()
	m.llmTokensSent.WithLabelValues(model, purpose).Add(float64(inputTokens))
	m.llmTokensReceived.WithLabelValues(model, purpose).Add(float64(outputTokens))
	m.llmLatency.WithLabelValues(model, purpose).Observe(elapsed.Seconds())
}

// ObserveSegments counts formatted math segments of one kind.
func (m *Metrics) ObserveSegments(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.segments.WithLabelValues(kind).Add(float64(n))
}

// ObserveAPIEndpointDuration records an HTTP handler execution.
func (m *Metrics) ObserveAPIEndpointDuration(route, method, statusCode string, elapsed float64) {
	if m == nil {
		return
	}
	m.apiTime.With(prometheus.Labels{"route": route, "method": method, "status_code": statusCode}).Observe(elapsed)
}

// IncrementHTTPRequests counts one API request.
func (m *Metrics) IncrementHTTPRequests() {
	if m != nil {
		m.httpTotal.Inc()
	}
}

// IncrementHTTPErrors counts one non-2xx API response.
func (m *Metrics) IncrementHTTPErrors() {
	if m != nil {
		m.httpErrs.Inc()
	}
}

type errorLogger struct {
	log logrus.FieldLogger
}

func (l errorLogger) Println(v ...interface{}) {
	l.log.Warn("metric server error", v)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler(log logrus.FieldLogger) http.Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: errorLogger{log: log},
	})
}
