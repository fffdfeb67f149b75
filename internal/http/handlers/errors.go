// Package handlers defines the in-band error codes used across all API
// endpoints and the translation of service errors into them.
//
// Conventions:
//   - Codes are lowercase snake_case and stable; clients branch on them.
//   - Messages are the exact strings the bot shows to users.
//   - Unknown errors become internal_error and are logged, never echoed.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/http/middleware"
	"github.com/codedsnow/feedback-api/internal/services"
)

const (
	ErrCodeUnauthorized  = middleware.CodeUnauthorized
	ErrCodeForbidden     = "forbidden"
	ErrCodeMissingFields = "missing_fields"
	ErrCodeInvalidID     = "invalid_id"
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyVoted  = "already_voted"
	ErrCodeConflict      = middleware.CodeConflict
	ErrCodeTimeout       = "timeout"
	ErrCodeInternal      = middleware.CodeInternal
)

const (
	MsgMissingFields      = "Required body parameters were not given."
	MsgForbiddenWrite     = "You cannot submit information for that guild."
	MsgForbiddenRead      = "You cannot fetch information for that guild."
	MsgInvalidID          = "ID parameter was invalid."
	MsgRecordNotFound     = "Record does not exist."
	MsgSuggestionNotFound = "Suggestion does not exist."
	MsgAlreadyUpvoted     = "You have already upvoted this suggestion."
	MsgAlreadyDownvoted   = "You have already downvoted this suggestion."
	MsgDuplicateRecord    = "A record with that ID already exists."
	MsgTimeout            = "Request timed out."
	MsgInternal           = "internal error"
)

// access distinguishes read and write operations, which word the forbidden
// message differently.
type access int

const (
	write access = iota
	read
)

// failErr translates a service error into the in-band envelope.
func failErr(c *gin.Context, err error, a access) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		fail(c, ErrCodeUnauthorized, middleware.MsgInvalidToken)
	case errors.Is(err, services.ErrForbidden):
		if a == read {
			fail(c, ErrCodeForbidden, MsgForbiddenRead)
			return
		}
		fail(c, ErrCodeForbidden, MsgForbiddenWrite)
	case errors.Is(err, services.ErrMissingFields):
		fail(c, ErrCodeMissingFields, MsgMissingFields)
	case errors.Is(err, services.ErrInvalidID):
		fail(c, ErrCodeInvalidID, MsgInvalidID)
	case errors.Is(err, services.ErrRecordNotFound):
		fail(c, ErrCodeNotFound, MsgRecordNotFound)
	case errors.Is(err, services.ErrSuggestionNotFound):
		fail(c, ErrCodeNotFound, MsgSuggestionNotFound)
	case errors.Is(err, services.ErrAlreadyUpvoted):
		fail(c, ErrCodeAlreadyVoted, MsgAlreadyUpvoted)
	case errors.Is(err, services.ErrAlreadyDownvoted):
		fail(c, ErrCodeAlreadyVoted, MsgAlreadyDownvoted)
	case errors.Is(err, services.ErrDuplicateRecord):
		fail(c, ErrCodeConflict, MsgDuplicateRecord)
	case errors.Is(err, services.ErrTimeout):
		fail(c, ErrCodeTimeout, MsgTimeout)
	default:
		_ = c.Error(err)
		fail(c, ErrCodeInternal, MsgInternal)
	}
}
