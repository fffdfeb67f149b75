package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/fetch/:guild_id/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "banner") })

	fetch := httpReqs.WithLabelValues("GET", "/fetch/:guild_id/:id", "200")
	other := httpReqs.WithLabelValues("GET", unmatchedRoute, "200")
	baseFetch, baseOther := testutil.ToFloat64(fetch), testutil.ToFloat64(other)

	for _, path := range []string{"/fetch/g1/s_1", "/fetch/g2/r_9", "/wp-login.php", "/.env"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(fetch); got != baseFetch+2 {
		t.Fatalf("fetch route = %v; want %v", got, baseFetch+2)
	}
	if got := testutil.ToFloat64(other); got != baseOther+2 {
		t.Fatalf("unmatched = %v; want %v", got, baseOther+2)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v; want 0", got)
	}
}

func TestMetrics_InbandFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.POST("/submit", func(c *gin.Context) { Reject(c, "forbidden", "nope") })

	base := testutil.ToFloat64(httpInband.WithLabelValues("/submit", "forbidden"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("in-band failure must be 200, got %d", w.Code)
	}
	if got := testutil.ToFloat64(httpInband.WithLabelValues("/submit", "forbidden")); got != base+1 {
		t.Fatalf("inband counter = %v; want %v", got, base+1)
	}
}

func TestRouteOf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := routeOf(c); got != unmatchedRoute {
		t.Fatalf("routeOf = %q; want %q", got, unmatchedRoute)
	}
}
