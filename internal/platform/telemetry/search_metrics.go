package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quote_finder"

// SearchMetrics exposes search and catalog activity to Prometheus.
type SearchMetrics struct {
	searches     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	results      prometheus.Histogram
	cache        *prometheus.CounterVec
	catalogSize  prometheus.Gauge
	reloads      *prometheus.CounterVec
	reloadLength prometheus.Histogram
}

// NewSearchMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer to publish them on /-/metrics.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	factory := promauto.With(reg)

	return &SearchMetrics{
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches run, by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent scanning the catalog.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"strategy"}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of quotations returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
		}),
		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search cache lookups, by result.",
		}, []string{"result"}),
		catalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_quotations",
			Help:      "Quotations in the active catalog.",
		}),
		reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reloads, by outcome.",
		}, []string{"outcome"}),
		reloadLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_reload_duration_seconds",
			Help:      "Time spent loading every catalog source.",
		}),
	}
}

// ObserveSearch records one search. outcome is "ok", "invalid" or "error".
func (m *SearchMetrics) ObserveSearch(strategy, outcome string, elapsed time.Duration, results int) {
	m.searches.WithLabelValues(strategy, outcome).Inc()

	if outcome == "ok" {
		m.duration.WithLabelValues(strategy).Observe(elapsed.Seconds())
		m.results.Observe(float64(results))
	}
}

// ObserveCache records a cache hit or miss.
func (m *SearchMetrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	m.cache.WithLabelValues(result).Inc()
}

// ObserveReload records a catalog reload and, on success, the new catalog size.
func (m *SearchMetrics) ObserveReload(ok bool, elapsed time.Duration, size int) {
	if !ok {
		m.reloads.WithLabelValues("error").Inc()
		return
	}

	m.reloads.WithLabelValues("ok").Inc()
	m.reloadLength.Observe(elapsed.Seconds())
	m.catalogSize.Set(float64(size))
}
