// Package services defines the business logic for suggestions, reports and
// votes. This file centralizes the service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages and codes is performed at the
// handler layer.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/codedsnow/feedback-api/internal/domain"
)

var (
	// ErrUnauthorized indicates a missing or unknown API key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a valid key acting on a guild outside its scope.
	ErrForbidden = errors.New("guild not permitted for this key")

	// ErrMissingFields is returned when a required parameter is absent.
	ErrMissingFields = errors.New("required fields missing")

	// ErrInvalidID is returned when an id carries no known kind prefix.
	ErrInvalidID = domain.ErrInvalidID

	// ErrRecordNotFound indicates no record matches (guild, id).
	ErrRecordNotFound = errors.New("record not found")

	// ErrSuggestionNotFound indicates no suggestion matches (guild, message).
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrAlreadyUpvoted and ErrAlreadyDownvoted reject a repeated vote in the
	// same direction.
	ErrAlreadyUpvoted   = errors.New("already upvoted")
	ErrAlreadyDownvoted = errors.New("already downvoted")

	// ErrDuplicateRecord is returned when submit reuses an existing id.
	ErrDuplicateRecord = errors.New("record id already exists")

	// ErrTimeout indicates the persistence deadline elapsed.
	ErrTimeout = errors.New("request timed out")

	// ErrVoteContention is returned when a vote kept losing the
	// compare-and-swap race and ran out of attempts.
	ErrVoteContention = errors.New("vote contention: attempts exhausted")
)

// storeErr maps a persistence failure to ErrTimeout when the deadline hit,
// and wraps anything else with the operation name.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("%s: %w", op, err)
}
