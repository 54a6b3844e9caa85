package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counters: cache outcomes per dashboard.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "Total number of dashboard cache hits.",
		},
		[]string{"dashboard"},
	)

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_misses_total",
			Help: "Total number of dashboard cache misses.",
		},
		[]string{"dashboard"},
	)

	// Counter: keys removed by invalidation.
	InvalidatedKeysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_invalidated_keys_total",
			Help: "Total number of cache keys removed by invalidation.",
		},
	)

	// Counter: pre-warm iterations that failed, per tenant.
	PrewarmFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_prewarm_failures_total",
			Help: "Total number of failed pre-warm iterations.",
		},
		[]string{"tenant"},
	)

	// Histogram: API HTTP latency in seconds.
	RequestLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_request_latency_seconds",
			Help:    "HTTP request latency for the dashboard API in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		InvalidatedKeysTotal,
		PrewarmFailuresTotal,
		RequestLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// capture status code
		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Seconds()

		path := r.URL.Path
		method := r.Method
		status := strconv.Itoa(rec.statusCode)

		RequestLatencySeconds.
			WithLabelValues(path, method, status).
			Observe(duration)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
