// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the in-band failure envelope. Every outcome, including
// rejections raised by middleware, is written with HTTP 200 and a body of
// the form {"success":false,"error":"...","code":"..."}; clients branch on
// success, never on the transport status.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Codes raised by middleware. Handlers define the domain codes.
const (
	CodeUnauthorized = "unauthorized"
	CodeBadRequest   = "bad_request"
	CodeConflict     = "conflict"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

const ctxKeyResultCode = "result.code"

// SetResultCode records the in-band failure code of the current request so
// the access log and metrics can report it despite the 200 status.
func SetResultCode(c *gin.Context, code string) {
	c.Set(ctxKeyResultCode, code)
}

// ResultCode returns the code set by SetResultCode, or "" on success.
func ResultCode(c *gin.Context) string {
	return c.GetString(ctxKeyResultCode)
}

// Reject aborts the chain with an in-band failure.
func Reject(c *gin.Context, code, msg string) {
	SetResultCode(c, code)
	c.AbortWithStatusJSON(http.StatusOK, gin.H{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}
