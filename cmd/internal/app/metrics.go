package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gate/cmd/internal/store"
)

// Metrics holds the process metrics registry and the request instruments.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds the registry with request instruments plus live gauges
// over the store's map sizes.
func NewMetrics(st *store.Store) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_http_requests_total",
		Help: "HTTP requests served, by method, path, and status class.",
	}, []string{"method", "path", "class"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gate_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	reg.MustRegister(requests, duration)

	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gate_store_users",
		Help: "Registered user accounts currently in the store.",
	}, func() float64 {
		users, _, _ := st.Counts()
		return float64(users)
	}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gate_store_sessions",
		Help: "Sessions currently in the store, expired entries included.",
	}, func() float64 {
		_, sessions, _ := st.Counts()
		return float64(sessions)
	}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gate_store_apps",
		Help: "Applications currently registered with the broker.",
	}, func() float64 {
		_, _, apps := st.Counts()
		return float64(apps)
	}))

	return &Metrics{
		registry: reg,
		requests: requests,
		duration: duration,
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, path, statusClass(status)).Inc()
	m.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// HTTPHandler exposes the registry in Prometheus text format.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
