// Package metrics exposes Prometheus collectors for the HTTP layer and the
// background workers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels used by the worker counters.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	uploadsTotal      *prometheus.CounterVec
	workerRunsTotal   *prometheus.CounterVec
	wsClients         prometheus.Gauge
}

// New registers every collector on a fresh registry, so tests can build
// as many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solarweather_http_requests_total",
			Help: "HTTP requests processed, by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solarweather_http_request_duration_seconds",
			Help:    "HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solarweather_station_uploads_total",
			Help: "Weather station uploads by outcome.",
		}, []string{"result"}),
		workerRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solarweather_worker_runs_total",
			Help: "Background worker iterations by worker and outcome.",
		}, []string{"worker", "result"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solarweather_ws_clients",
			Help: "Connected WebSocket clients.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.uploadsTotal,
		m.workerRunsTotal,
		m.wsClients,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// All recording methods are no-ops on a nil *Metrics.

func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) Upload(result string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) WorkerRun(worker string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.workerRunsTotal.WithLabelValues(worker, result).Inc()
}

func (m *Metrics) WSConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) WSDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}
