package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EricBell/accessible-outings/internal/cache"
)

// MetricsRegistry holds the Prometheus metrics the server exports.
type MetricsRegistry struct {
	registry *prometheus.Registry

	// HTTP metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Cache performance, refreshed from cache.Stats on scrape
	CacheHitRatio prometheus.Gauge
	CacheHits     prometheus.Gauge
	CacheMisses   prometheus.Gauge

	// Domain counters
	SearchesTotal prometheus.Counter
}

// NewMetricsRegistry creates the metrics registry. Metrics register against
// a private registry so repeated construction cannot collide.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outings_http_requests_total",
				Help: "Total number of HTTP requests by route, method, and status",
			},
			[]string{"route", "method", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outings_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by route and method",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"route", "method"},
		),

		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "outings_cache_hit_ratio",
				Help: "Current cache hit ratio (0.0 to 1.0)",
			},
		),

		CacheHits: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "outings_cache_hits_total",
				Help: "Total number of cache hits",
			},
		),

		CacheMisses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "outings_cache_misses_total",
				Help: "Total number of cache misses",
			},
		),

		SearchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "outings_searches_total",
				Help: "Total number of venue searches served",
			},
		),
	}

	m.registry.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.CacheHitRatio,
		m.CacheHits,
		m.CacheMisses,
		m.SearchesTotal,
	)

	return m
}

// RecordRequest records one completed HTTP request.
func (m *MetricsRegistry) RecordRequest(route, method string, status int, duration time.Duration) {
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// UpdateCacheStats refreshes the cache gauges from a stats snapshot.
func (m *MetricsRegistry) UpdateCacheStats(s cache.Stats) {
	m.CacheHits.Set(float64(s.Hits))
	m.CacheMisses.Set(float64(s.Misses))
	if total := s.Hits + s.Misses; total > 0 {
		m.CacheHitRatio.Set(float64(s.Hits) / float64(total))
	}
}

// Handler returns the scrape endpoint for this registry.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
