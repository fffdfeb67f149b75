// Vote HTTP handlers.
//
// This file exposes the voting endpoints for suggestions:
//   - POST /suggestions/upvote
//   - POST /suggestions/downvote
//
// Both share one code path; the direction is fixed per route.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/domain"
	"github.com/codedsnow/feedback-api/internal/services"
)

// VoteRequest identifies the suggestion by its rendered message and the voter.
type VoteRequest struct {
	Message *string `json:"message" binding:"required" example:"1093"`
	Guild   *string `json:"guild"   binding:"required" example:"111"`
	UserID  *string `json:"user_id" binding:"required" example:"240211"`
}

// VoteResponse carries the vote counts after the vote. Voter ids stay
// server-side.
type VoteResponse struct {
	Success      bool `json:"success" example:"true"`
	NewUpvotes   int  `json:"new_upvotes" example:"3"`
	NewDownvotes int  `json:"new_downvotes" example:"1"`
}

// Upvote godoc
// @ID          upvoteSuggestion
// @Summary     Upvote a suggestion
// @Description Adds user_id to the upvotes and removes it from the downvotes.
// @Tags        Votes
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       Idempotency-Key header string false "Idempotency key for safe retries"
// @Param       body            body   handlers.VoteRequest true "Vote"
// @Success     200 {object} handlers.VoteResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, missing_fields, forbidden, not_found, already_voted.
// @Router      /suggestions/upvote [post]
func (h *Handlers) Upvote(c *gin.Context) { h.vote(c, domain.Up) }

// Downvote godoc
// @ID          downvoteSuggestion
// @Summary     Downvote a suggestion
// @Description Adds user_id to the downvotes and removes it from the upvotes.
// @Tags        Votes
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       Idempotency-Key header string false "Idempotency key for safe retries"
// @Param       body            body   handlers.VoteRequest true "Vote"
// @Success     200 {object} handlers.VoteResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, missing_fields, forbidden, not_found, already_voted.
// @Router      /suggestions/downvote [post]
func (h *Handlers) Downvote(c *gin.Context) { h.vote(c, domain.Down) }

func (h *Handlers) vote(c *gin.Context, dir domain.Direction) {
	pol, found := callerPolicy(c)
	if !found {
		return
	}
	var req VoteRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.votes.Cast(c.Request.Context(), pol, services.VoteInput{
		Message: *req.Message,
		Guild:   *req.Guild,
		User:    *req.UserID,
	}, dir)
	if err != nil {
		failErr(c, err, write)
		return
	}
	ok(c, VoteResponse{
		Success:      true,
		NewUpvotes:   res.Upvotes.Len(),
		NewDownvotes: res.Downvotes.Len(),
	})
}
