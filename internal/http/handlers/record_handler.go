// Record HTTP handlers.
//
// This file exposes the endpoints for suggestions and reports:
//   - POST /submit                 (create)
//   - POST /setstatus              (change status)
//   - POST /move                   (change channel)
//   - GET  /fetch/{guild_id}/{id}  (read one)
//   - GET  /fetchall/{guild_id}    (read all of a guild)
//
// Handlers are transport-thin: they bind input, call the record service and
// translate results into the in-band envelope.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/domain"
	"github.com/codedsnow/feedback-api/internal/services"
)

//
// DTOs
//

// SubmitRequest is the JSON payload for creating a record. The id prefix
// selects the kind: "s_" for suggestions, "r_" for reports. Empty strings are
// accepted; absent or null fields are not.
type SubmitRequest struct {
	ID      *string `json:"id"      binding:"required" example:"s_1093"`
	Context *string `json:"context" binding:"required" example:"Add a music channel"`
	Author  *string `json:"author"  binding:"required" example:"240211"`
	Avatar  *string `json:"avatar"  binding:"required" example:"https://cdn.discordapp.com/avatars/240211/a.png"`
	Guild   *string `json:"guild"   binding:"required" example:"111"`
	Channel *string `json:"channel" binding:"required" example:"880"`
	Message *string `json:"message" binding:"required" example:"1093"`
	Status  *string `json:"status"  binding:"required" example:"pending"`
}

// SetStatusRequest is the JSON payload for changing a record's status.
type SetStatusRequest struct {
	ID     *string `json:"id"     binding:"required" example:"s_1093"`
	Guild  *string `json:"guild"  binding:"required" example:"111"`
	Status *string `json:"status" binding:"required" example:"approved"`
}

// MoveRequest is the JSON payload for recording a record's new channel.
type MoveRequest struct {
	ID      *string `json:"id"      binding:"required" example:"r_77"`
	Guild   *string `json:"guild"   binding:"required" example:"111"`
	Channel *string `json:"channel" binding:"required" example:"881"`
}

// LocationResponse tells the bot where to re-render the record.
type LocationResponse struct {
	Success   bool   `json:"success"   example:"true"`
	MessageID string `json:"messageId" example:"1093"`
	ChannelID string `json:"channelId" example:"880"`
}

// FetchResponse carries zero or one record.
type FetchResponse struct {
	Success bool            `json:"success" example:"true"`
	Data    []domain.Record `json:"data"`
}

// FetchAllResponse carries every record of a guild.
type FetchAllResponse struct {
	Success     bool                `json:"success" example:"true"`
	Suggestions []domain.Suggestion `json:"suggestions"`
	Reports     []domain.Report     `json:"reports"`
}

//
// Handlers
//

// Submit godoc
// @ID          submitRecord
// @Summary     Create a suggestion or report
// @Description Persists a new record. The id prefix selects the kind ("s_" suggestion, "r_" report). Failures are reported in-band.
// @Tags        Records
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       Idempotency-Key header string false "Idempotency key for safe retries" example(3a2c0d8e-5d7c-4a0a-a1f3-6b9d7b2f0c11)
// @Param       body            body   handlers.SubmitRequest true "Record payload"
// @Success     200 {object} handlers.SuccessResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, missing_fields, forbidden, invalid_id, conflict.
// @Router      /submit [post]
func (h *Handlers) Submit(c *gin.Context) {
	pol, found := callerPolicy(c)
	if !found {
		return
	}
	var req SubmitRequest
	if !bind(c, &req) {
		return
	}

	err := h.records.Submit(c.Request.Context(), pol, services.SubmitInput{
		ID:      *req.ID,
		Context: *req.Context,
		Author:  *req.Author,
		Avatar:  *req.Avatar,
		Guild:   *req.Guild,
		Channel: *req.Channel,
		Message: *req.Message,
		Status:  *req.Status,
	})
	if err != nil {
		failErr(c, err, write)
		return
	}
	ok(c, SuccessResponse{Success: true})
}

// SetStatus godoc
// @ID          setRecordStatus
// @Summary     Change a record's status
// @Description Updates the status of (guild, id) and returns where its message lives.
// @Tags        Records
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       body body handlers.SetStatusRequest true "Status change"
// @Success     200 {object} handlers.LocationResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, missing_fields, forbidden, invalid_id, not_found.
// @Router      /setstatus [post]
func (h *Handlers) SetStatus(c *gin.Context) {
	pol, found := callerPolicy(c)
	if !found {
		return
	}
	var req SetStatusRequest
	if !bind(c, &req) {
		return
	}

	loc, err := h.records.SetStatus(c.Request.Context(), pol, *req.ID, *req.Guild, *req.Status)
	if err != nil {
		failErr(c, err, write)
		return
	}
	ok(c, LocationResponse{Success: true, MessageID: loc.Message, ChannelID: loc.Channel})
}

// Move godoc
// @ID          moveRecord
// @Summary     Record a new channel for a record
// @Description Updates the channel of (guild, id) and returns where its message lives.
// @Tags        Records
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       body body handlers.MoveRequest true "Channel change"
// @Success     200 {object} handlers.LocationResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, missing_fields, forbidden, invalid_id, not_found.
// @Router      /move [post]
func (h *Handlers) Move(c *gin.Context) {
	pol, found := callerPolicy(c)
	if !found {
		return
	}
	var req MoveRequest
	if !bind(c, &req) {
		return
	}

	loc, err := h.records.Move(c.Request.Context(), pol, *req.ID, *req.Guild, *req.Channel)
	if err != nil {
		failErr(c, err, write)
		return
	}
	ok(c, LocationResponse{Success: true, MessageID: loc.Message, ChannelID: loc.Channel})
}

// Fetch godoc
// @ID          fetchRecord
// @Summary     Fetch one record
// @Description Returns the record (guild_id, id) as a one-element list, or an empty list when it does not exist.
// @Tags        Records
// @Produce     json
// @Security    ApiKeyAuth
// @Param       guild_id path string true "Guild ID" example(111)
// @Param       id       path string true "Record ID" example(s_1093)
// @Success     200 {object} handlers.FetchResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, forbidden, invalid_id.
// @Router      /fetch/{guild_id}/{id} [get]
func (h *Handlers) Fetch(c *gin.Context) {
	pol, found := callerPolicy(c)
	if !found {
		return
	}

	recs, err := h.records.Fetch(c.Request.Context(), pol, c.Param("guild_id"), c.Param("id"))
	if err != nil {
		failErr(c, err, read)
		return
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	ok(c, FetchResponse{Success: true, Data: recs})
}

// FetchAll godoc
// @ID          fetchAllRecords
// @Summary     Fetch every record of a guild
// @Description Returns all suggestions and reports of guild_id, oldest first.
// @Tags        Records
// @Produce     json
// @Security    ApiKeyAuth
// @Param       guild_id path string true "Guild ID" example(111)
// @Success     200 {object} handlers.FetchAllResponse
// @Description Failures answer 200 with handlers.ErrorResponse, code one of: unauthorized, forbidden.
// @Router      /fetchall/{guild_id} [get]
func (h *Handlers) FetchAll(c *gin.Context) {
	pol, found := callerPolicy(c)
	if !found {
		return
	}

	snap, err := h.records.FetchAll(c.Request.Context(), pol, c.Param("guild_id"))
	if err != nil {
		failErr(c, err, read)
		return
	}
	resp := FetchAllResponse{Success: true, Suggestions: snap.Suggestions, Reports: snap.Reports}
	if resp.Suggestions == nil {
		resp.Suggestions = []domain.Suggestion{}
	}
	if resp.Reports == nil {
		resp.Reports = []domain.Report{}
	}
	ok(c, resp)
}
