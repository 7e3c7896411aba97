package metric

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the HTTP request collectors.
type Metrics struct {
	InflightRequests prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New creates the request collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		InflightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tyre_inventory",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tyre_inventory",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tyre_inventory",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(m.InflightRequests, m.RequestsTotal, m.RequestDuration)

	return m
}
