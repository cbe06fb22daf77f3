package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biseogo_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biseogo_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biseogo_completion_duration_seconds",
		Help:    "Duration of completion provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	ttsFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biseogo_tts_failures_total",
		Help: "Total number of failed speech synthesis attempts",
	})
)

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveCompletion records one completion provider call.
func ObserveCompletion(status string, seconds float64) {
	completionDuration.WithLabelValues(status).Observe(seconds)
}

// RecordTTSFailure counts a degraded speech synthesis attempt.
func RecordTTSFailure() {
	ttsFailures.Inc()
}
