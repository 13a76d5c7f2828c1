package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the forecast pipeline.
// It satisfies forecast.Recorder.
type Metrics struct {
	cacheLookups       *prometheus.CounterVec
	cacheWriteFailures prometheus.Counter
	upstreamRequests   *prometheus.CounterVec
	upstreamDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_cache_lookups_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
		cacheWriteFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "forecast_cache_write_failures_total",
				Help: "Forecasts that could not be written to the cache",
			},
		),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_upstream_requests_total",
				Help: "Weather API requests by outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_upstream_request_duration_seconds",
				Help:    "Weather API request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.cacheLookups, m.cacheWriteFailures, m.upstreamRequests, m.upstreamDuration)
	return m
}

func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheWriteFailed() {
	m.cacheWriteFailures.Inc()
}

func (m *Metrics) UpstreamRequest(outcome string, elapsed time.Duration) {
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	m.upstreamDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
