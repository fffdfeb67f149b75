// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelope shared by every endpoint. Domain
// outcomes, including failures, are delivered in-band: the HTTP status is
// always 200 and clients branch on the success field.
//
// Example failure:
//
//	HTTP/1.1 200 OK
//	{
//	  "success": false,
//	  "error": "You cannot submit information for that guild.",
//	  "code": "forbidden"
//	}
//
// Example success:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "messageId": "1093", "channelId": "880" }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/http/middleware"
)

// ErrorResponse is the in-band failure envelope returned by all endpoints.
type ErrorResponse struct {
	// Always false
	Success bool `json:"success" example:"false"`
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"ID parameter was invalid."`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"invalid_id"`
}

// SuccessResponse is returned by operations without a payload.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// fail aborts the request with an in-band failure. The code is recorded for
// the access log and metrics; internal errors are logged with the request's
// logger.
func fail(c *gin.Context, code, msg string) {
	middleware.SetResultCode(c, code)
	if code == ErrCodeInternal {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(http.StatusOK, ErrorResponse{Success: false, Error: msg, Code: code})
}

// ok writes a success JSON response.
func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
