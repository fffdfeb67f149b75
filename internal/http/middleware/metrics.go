package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that fell through to the banner. Scanners
// probe arbitrary paths, so the raw URL never becomes a label.
const unmatchedRoute = "unmatched"

var (
	httpReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpLat = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "HTTP request latency by method and route.",
		// Bot traffic is small JSON plus one DB round trip; 1ms..~4s.
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 13),
	}, []string{"method", "path"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "HTTP requests currently being served.",
	})

	// Every domain failure is a 200, so status alone cannot tell them apart.
	httpInband = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_inband_failures_total",
		Help: "Requests answered with success=false, by route and result code.",
	}, []string{"path", "code"})

	httpThrottled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by route.",
	}, []string{"path"})

	httpRespSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_response_size_bytes",
		Help: "HTTP response body size by method and route.",
		// 64B..1MiB; fetchall on a busy guild is the only large payload.
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path"})
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpInband, httpThrottled, httpRespSize)
}

// routeOf is the registered route pattern, or unmatchedRoute.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedRoute
}

// Metrics records Prometheus request metrics labelled by route pattern.
// In-band failures are counted by the code set through SetResultCode.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInflight.Inc()
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		httpInflight.Dec()

		route, method := routeOf(c), c.Request.Method
		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, route).Observe(elapsed.Seconds())
		if n := c.Writer.Size(); n >= 0 {
			httpRespSize.WithLabelValues(method, route).Observe(float64(n))
		}
		if code := ResultCode(c); code != "" {
			httpInband.WithLabelValues(route, code).Inc()
		}
	}
}
