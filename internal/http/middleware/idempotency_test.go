package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// memIdem is an in-memory idempotency store for tests.
type memIdem struct {
	mu      sync.Mutex
	recs    map[IdemScope]IdemRecord
	lookups int
	saves   int
}

func newMemIdem() *memIdem { return &memIdem{recs: map[IdemScope]IdemRecord{}} }

func (m *memIdem) lookup(_ context.Context, s IdemScope, _ time.Time) (*IdemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	rec, ok := m.recs[s]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memIdem) save(_ context.Context, s IdemScope, reqHash, resp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.recs[s] = IdemRecord{RequestHash: reqHash, Response: resp}
	return nil
}

// idemRouter mounts Idempotency on POST /submit with a handler that counts
// calls and answers with the body's "ok" field.
func idemRouter(store *memIdem, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyAPIKeyHash, "k1"); c.Next() })
	r.Use(Idempotency(IdempotencyOptions{}, store.lookup, store.save))
	handler := func(c *gin.Context) {
		*calls++
		var in struct {
			OK bool `json:"ok"`
		}
		_ = c.ShouldBindJSON(&in)
		if !in.OK {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "nope", "code": "forbidden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "n": *calls})
	}
	r.POST("/submit", handler)
	r.GET("/submit", handler)
	return r
}

func postIdem(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return m
}

func TestHelpers_GetIdempotencyKey_IsReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false by default")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("expected GetIdempotencyKey to be absent for non-string value")
	}
	c.Set(ctxKeyIdemKey, "abc")
	if k, ok := GetIdempotencyKey(c); k != "abc" || !ok {
		t.Fatalf("GetIdempotencyKey = %q,%v", k, ok)
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected IsReplay=true")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false for non-bool")
	}
}

func TestIdempotency_NoHeader_PassesThrough(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	postIdem(r, "", `{"ok":true}`)
	postIdem(r, "", `{"ok":true}`)
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
	if store.lookups != 0 || store.saves != 0 {
		t.Fatalf("store touched without a key: lookups=%d saves=%d", store.lookups, store.saves)
	}
}

func TestIdempotency_NonPOST_PassesThrough(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/submit", nil)
	req.Header.Set(HeaderIdempotencyKey, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if calls != 1 || store.lookups != 0 {
		t.Fatalf("GET should bypass idempotency: calls=%d lookups=%d", calls, store.lookups)
	}
}

func TestIdempotency_InvalidKey_RejectedInBand(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	for _, key := range []string{"has space", "bad/slash", strings.Repeat("a", 201)} {
		w := postIdem(r, key, `{"ok":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want in-band 200", w.Code)
		}
		body := decodeEnvelope(t, w)
		if body["success"] != false || body["code"] != CodeBadRequest {
			t.Fatalf("key %q: unexpected body %v", key, body)
		}
	}
	if calls != 0 {
		t.Fatalf("handler must not run for invalid keys")
	}
}

func TestIdempotency_ReplaySameBody(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	w1 := postIdem(r, "retry-1", `{"ok":true}`)
	if w1.Header().Get(headerReplayed) != "" {
		t.Fatalf("first response must not be marked replayed")
	}
	w2 := postIdem(r, "retry-1", `{"ok":true}`)

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if w2.Header().Get(headerReplayed) != "true" {
		t.Fatalf("missing %s header on replay", headerReplayed)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("replay body differs:\n first=%s\nsecond=%s", w1.Body.String(), w2.Body.String())
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
}

func TestIdempotency_DifferentBody_Conflict(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	postIdem(r, "retry-2", `{"ok":true}`)
	w := postIdem(r, "retry-2", `{"ok":true,"extra":1}`)

	body := decodeEnvelope(t, w)
	if body["code"] != CodeConflict || body["error"] != MsgIdempotencyMismatch {
		t.Fatalf("unexpected body %v", body)
	}
	if calls != 1 {
		t.Fatalf("handler must not run on mismatch, calls=%d", calls)
	}
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	postIdem(r, "retry-3", `{"ok":false}`)
	postIdem(r, "retry-3", `{"ok":false}`)
	if calls != 2 {
		t.Fatalf("failed responses must not be replayed, calls=%d", calls)
	}
	if store.saves != 0 {
		t.Fatalf("saves = %d, want 0", store.saves)
	}
}

func TestIdempotency_ScopedByAPIKey(t *testing.T) {
	store := newMemIdem()
	calls := 0
	r := idemRouter(store, &calls)

	postIdem(r, "shared", `{"ok":true}`)

	// Same key and body from another caller must not replay.
	for s := range store.recs {
		if s.APIKeyHash != "k1" || s.Route != "/submit" || s.Key != "shared" {
			t.Fatalf("unexpected scope %+v", s)
		}
	}
	other := IdemScope{APIKeyHash: "k2", Route: "/submit", Key: "shared"}
	if rec, _ := store.lookup(context.Background(), other, time.Now()); rec != nil {
		t.Fatalf("record leaked across API keys")
	}
}

func TestIdempotency_StoreErrorsDoNotBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calls := 0
	lookup := func(context.Context, IdemScope, time.Time) (*IdemRecord, error) {
		return nil, errors.New("db down")
	}
	save := func(context.Context, IdemScope, string, string) error { return errors.New("db down") }

	r := gin.New()
	r.Use(Idempotency(IdempotencyOptions{}, lookup, save))
	r.POST("/submit", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := postIdem(r, "abc", `{}`)
	if calls != 1 || decodeEnvelope(t, w)["success"] != true {
		t.Fatalf("store errors must not fail the request: calls=%d body=%s", calls, w.Body.String())
	}
}

func TestSucceeded(t *testing.T) {
	cases := map[string]bool{
		`{"success":true}`:  true,
		`{"success":false}`: false,
		`{}`:                false,
		`not json`:          false,
	}
	for in, want := range cases {
		if got := succeeded([]byte(in)); got != want {
			t.Fatalf("succeeded(%q) = %v, want %v", in, got, want)
		}
	}
}
