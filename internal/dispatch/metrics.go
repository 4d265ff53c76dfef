package dispatch

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "pension_"

const (
	fallbackReasonTimeout   = "timeout"
	fallbackReasonTransport = "transport"
	fallbackReasonMalformed = "malformed_response"
)

var (
	registerOnce sync.Once

	computeTotal   *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec
	fallbackTotal  *prometheus.CounterVec
	cacheHits      prometheus.Counter
)

// initMetrics registers dispatcher metrics on the default registry exactly
// once, regardless of how many dispatchers a process builds.
func initMetrics() {
	registerOnce.Do(func() {
		computeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "compute_total",
				Help: "Total projection computations by execution source",
			},
			[]string{"source"},
		)
		computeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "compute_latency_seconds",
				Help:    "Projection computation latency by execution source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		fallbackTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fallback_total",
				Help: "Local fallbacks by remote failure reason",
			},
			[]string{"reason"},
		)
		cacheHits = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "compute_cache_hits_total",
				Help: "Projection requests answered from the last-result cache",
			},
		)

		prometheus.MustRegister(computeTotal, computeLatency, fallbackTotal, cacheHits)
	})
}

func observeCompute(source string, elapsed time.Duration) {
	computeTotal.WithLabelValues(source).Inc()
	computeLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

func observeFallback(reason string) {
	fallbackTotal.WithLabelValues(reason).Inc()
}

func observeCacheHit() {
	cacheHits.Inc()
}
