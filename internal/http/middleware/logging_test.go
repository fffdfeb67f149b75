package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if v, ok := c.Get(requestIDKey); !ok || v == "" {
			t.Fatalf("requestID not set in context")
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated %s header", requestIDHeader)
	}

	// Lowercase header -> propagated
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req2.Header.Set(strings.ToLower(requestIDHeader), "abc-123")
	r.ServeHTTP(w2, req2)
	if got := w2.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	// Oversized ids are replaced
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req3.Header.Set(requestIDHeader, strings.Repeat("x", 500))
	r.ServeHTTP(w3, req3)
	if got := w3.Header().Get(requestIDHeader); len(got) > 128 {
		t.Fatalf("expected oversized request id to be replaced, got len %d", len(got))
	}
}

func TestLogger_LevelsByResultCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(RedactOptions{}))
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
	r.GET("/forbidden", func(c *gin.Context) { Reject(c, "forbidden", "nope") })
	r.GET("/boom", func(c *gin.Context) { Reject(c, CodeInternal, "internal error") })

	for _, p := range []string{"/ok", "/forbidden", "/boom", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 access log lines, got %d:\n%s", len(lines), buf.String())
	}
	want := []struct{ level, path, code string }{
		{"info", "/ok", ""},
		{"warn", "/forbidden", "forbidden"},
		{"error", "/boom", CodeInternal},
		{"warn", "/missing", ""}, // 404 and raw path fallback
	}
	for i, line := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if m["level"] != want[i].level || m["path"] != want[i].path {
			t.Fatalf("line %d: got level=%v path=%v, want %+v", i, m["level"], m["path"], want[i])
		}
		if want[i].code != "" && m["result_code"] != want[i].code {
			t.Fatalf("line %d: result_code=%v, want %q", i, m["result_code"], want[i].code)
		}
	}
}

func TestLogger_RedactsCredentialsAndPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(Logger(RedactOptions{MaskHeaders: []string{"X-Custom-Secret"}}))
	r.GET("/q", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/q?email=alice@example.com&id=123e4567-e89b-12d3-a456-426614174000", nil)
	req.Header.Set("Api-Key", "super-secret-key")
	req.Header.Set("Idempotency-Key", "retry-1")
	req.Header.Set("X-Custom-Secret", "hidden")
	req.Header.Set("X-Note", "call +1 212-555-1212")
	r.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	for _, leaked := range []string{"super-secret-key", "retry-1", "hidden", "alice@example.com", "123e4567-e89b", "555-1212"} {
		if strings.Contains(logs, leaked) {
			t.Fatalf("log leaked %q:\n%s", leaked, logs)
		}
	}
	for _, want := range []string{"[REDACTED]", "[REDACTED:email]", "[REDACTED:id]", "[REDACTED:phone]"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs:\n%s", want, logs)
		}
	}
}

func TestLogger_RequestContextCarriesLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(RedactOptions{}))
	r.GET("/svc", func(c *gin.Context) {
		// What a service sees: only the context.Context.
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/svc", nil)
	req.Header.Set(requestIDHeader, "rid-svc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, `"message":"from service"`) || !strings.Contains(first, `"request_id":"rid-svc"`) {
		t.Fatalf("service log must carry request fields, got %q", first)
	}
}

func TestRecovery_PanicsToInbandInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(RedactOptions{}))
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "rid-p")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected in-band 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["success"] != false || body["error"] != "internal error" || body["code"] != CodeInternal {
		t.Fatalf("unexpected body %v", body)
	}
	if w.Header().Get(requestIDHeader) != "rid-p" {
		t.Fatalf("request id header lost")
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "kaboom") {
		t.Fatalf("expected panic to be logged, got:\n%s", buf.String())
	}
}

func TestResponseTime_SetOnEveryResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ResponseTime())
	r.GET("/json", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
	r.GET("/empty", func(c *gin.Context) {})
	r.GET("/reject", func(c *gin.Context) { Reject(c, "x", "y") })

	for _, p := range []string{"/json", "/empty", "/reject", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		got := w.Header().Get(responseTimeHeader)
		if !strings.HasSuffix(got, "ms") {
			t.Fatalf("%s: expected X-Response-Time in ms, got %q", p, got)
		}
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("expected fallback logger")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("max<=0 must disable truncation, got %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("unexpected %q", got)
	}
}
