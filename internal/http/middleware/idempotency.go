// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotent retries for POST routes. A client that
// sends an Idempotency-Key gets the first successful response replayed
// verbatim for every retry with the same body, so a bot that times out and
// retries a submit or a vote never applies it twice.
//
// Records are scoped by (API key fingerprint, route, key) and compared by a
// fingerprint of the request body. Persistence is injected through the
// IdempotencyLookup and IdempotencySave function types.
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations.
const HeaderIdempotencyKey = "Idempotency-Key"

// headerReplayed marks a response served from a stored record.
const headerReplayed = "Idempotent-Replayed"

// MsgIdempotencyMismatch is returned when a key is reused with another body.
const MsgIdempotencyMismatch = "Idempotency-Key was reused with a different request body."

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay was served
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// IdemScope identifies a stored response.
type IdemScope struct {
	APIKeyHash string
	Route      string
	Key        string
}

// IdemRecord is a stored response and the body fingerprint it answered.
type IdemRecord struct {
	RequestHash string
	Response    string
}

// IdempotencyLookup returns the live record for scope, or (nil, nil) when
// there is none. Errors never block the request.
type IdempotencyLookup func(ctx context.Context, scope IdemScope, now time.Time) (*IdemRecord, error)

// IdempotencySave stores a successful response for scope.
type IdempotencySave func(ctx context.Context, scope IdemScope, requestHash, response string) error

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by Idempotency. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the response was served from a stored record.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Idempotency validates the Idempotency-Key header on POST requests and
// replays or records responses.
//
// Behavior:
//   - Non-POST requests and requests without the header pass through.
//   - An invalid key is rejected in-band (code bad_request).
//   - A live record with the same body fingerprint is replayed verbatim and
//     the request is flagged for rate-limit bypass.
//   - A live record with a different fingerprint is rejected in-band
//     (code conflict).
//   - Otherwise the handler runs and a success:true response is saved.
//
// Install after RequireAPIKey so records are scoped to the caller's key.
func Idempotency(opts IdempotencyOptions, lookup IdempotencyLookup, save IdempotencySave) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		// RFC-7230-ish token + common safe chars.
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			Reject(c, CodeBadRequest, "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			Reject(c, CodeBadRequest, "request body could not be read")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		scope := IdemScope{APIKeyHash: APIKeyHash(c), Route: c.FullPath(), Key: key}
		reqHash := hashBytes(body)
		lg := LoggerFrom(c)

		if lookup != nil {
			rec, err := lookup(c.Request.Context(), scope, time.Now().UTC())
			if err != nil {
				lg.Warn().Err(err).Msg("idempotency lookup failed")
			}
			if rec != nil {
				if rec.RequestHash != reqHash {
					Reject(c, CodeConflict, MsgIdempotencyMismatch)
					return
				}
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
				c.Header(headerReplayed, "true")
				c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(rec.Response))
				c.Abort()
				return
			}
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		if save == nil || cw.Status() != http.StatusOK || !succeeded(cw.buf.Bytes()) {
			return
		}
		if err := save(c.Request.Context(), scope, reqHash, cw.buf.String()); err != nil {
			lg.Warn().Err(err).Msg("idempotency save failed")
		}
	}
}

// captureWriter copies the response body while passing it through.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func succeeded(body []byte) bool {
	var env struct {
		Success bool `json:"success"`
	}
	return json.Unmarshal(body, &env) == nil && env.Success
}
