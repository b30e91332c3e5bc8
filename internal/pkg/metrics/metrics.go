// Package metrics defines the Prometheus instruments of both binaries.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ordermanagement"

// Worker message outcomes.
const (
	OutcomeCompleted         = "completed"
	OutcomeNotFound          = "not_found"
	OutcomeSkipped           = "skipped"
	OutcomeRejectedMalformed = "rejected_malformed"
	OutcomeRejectedFailed    = "rejected_failed"
)

// WorkerMetrics counts how the order-processing worker settles messages.
type WorkerMetrics struct {
	Messages   *prometheus.CounterVec
	Duration   prometheus.Histogram
	Reconnects prometheus.Counter
}

// NewWorkerMetrics creates the worker instruments and registers them on reg.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "messages_total",
		Help:      "Queue messages handled by the worker, by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "message_duration_seconds",
		Help:      "Time from delivery to acknowledgment.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "reconnects_total",
		Help:      "Reconnection attempts after losing the broker.",
	})

	reg.MustRegister(messages, duration, reconnects)
	return &WorkerMetrics{Messages: messages, Duration: duration, Reconnects: reconnects}
}

// Observe records one settled message.
func (m *WorkerMetrics) Observe(outcome string, elapsed time.Duration) {
	m.Messages.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// ServerMetrics counts HTTP requests served by echo.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewServerMetrics creates HTTP instruments for service and registers them on reg.
func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Middleware records every request under its route pattern.
func (m *ServerMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(route, strconv.Itoa(c.Response().Status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
			return nil
		}
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
