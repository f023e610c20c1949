// README: Prometheus collectors for the estimation pipeline; Metrics implements ai.Recorder.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	AIAttempts     *prometheus.CounterVec
	AIAcquisitions *prometheus.CounterVec
	Recoveries     *prometheus.CounterVec
	Estimates      *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AIAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotravel_ai_attempts_total",
				Help: "Generation calls made against AI models, by outcome",
			},
			[]string{"outcome"},
		),
		AIAcquisitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotravel_ai_acquisitions_total",
				Help: "Prompt acquisitions, by final result",
			},
			[]string{"result"},
		),
		Recoveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotravel_ai_recoveries_total",
				Help: "Model output recovery outcomes",
			},
			[]string{"outcome"},
		),
		Estimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotravel_estimates_total",
				Help: "Estimate requests, by result",
			},
			[]string{"result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotravel_http_requests_total",
				Help: "HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecotravel_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) ObserveAttempt(outcome string) {
	m.AIAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAcquisition(outcome string) {
	m.AIAcquisitions.WithLabelValues(outcome).Inc()
}

// ObserveRecovery counts "clean", "repaired" or "malformed" recoveries.
func (m *Metrics) ObserveRecovery(outcome string) {
	m.Recoveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEstimate(result string) {
	m.Estimates.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
