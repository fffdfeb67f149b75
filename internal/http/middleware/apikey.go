package middleware

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/policy"
)

// HeaderAPIKey carries the caller's opaque API key.
const HeaderAPIKey = "Api-Key"

// MsgInvalidToken is the in-band error for a missing or unknown key.
const MsgInvalidToken = "Invalid token."

const (
	ctxKeyPolicy     = "auth.policy"
	ctxKeyAPIKeyHash = "auth.key_hash"
)

// RequireAPIKey resolves the Api-Key header against table and stores the
// caller's policy in the context. Unknown or missing keys are rejected
// before any body parsing.
func RequireAPIKey(table *policy.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		pol, ok := table.Lookup(key)
		if !ok {
			Reject(c, CodeUnauthorized, MsgInvalidToken)
			return
		}
		c.Set(ctxKeyPolicy, pol)
		c.Set(ctxKeyAPIKeyHash, HashKey(key))
		c.Next()
	}
}

// PolicyFrom returns the policy stored by RequireAPIKey.
func PolicyFrom(c *gin.Context) (policy.Policy, bool) {
	v, ok := c.Get(ctxKeyPolicy)
	if !ok {
		return policy.Policy{}, false
	}
	p, ok := v.(policy.Policy)
	return p, ok
}

// APIKeyHash returns the fingerprint of the caller's key, or "" when the
// request was not authenticated. The raw key is never logged or stored.
func APIKeyHash(c *gin.Context) string {
	return c.GetString(ctxKeyAPIKeyHash)
}

// HashKey fingerprints an API key or request body.
func HashKey(s string) string {
	return fmt.Sprintf("%016x", xxhash.ChecksumString64(s))
}

func hashBytes(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Checksum64(b))
}
