package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/codedsnow/feedback-api/internal/domain"
	"github.com/codedsnow/feedback-api/internal/http/middleware"
	"github.com/codedsnow/feedback-api/internal/policy"
	"github.com/codedsnow/feedback-api/internal/repo"
	"github.com/codedsnow/feedback-api/internal/services"
)

//
// Service contracts (context-aware)
//

// RecordService defines record persistence consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RecordService interface {
	// Submit inserts a new suggestion or report.
	Submit(ctx context.Context, pol policy.Policy, in services.SubmitInput) error
	// SetStatus changes a record's status and returns its message location.
	SetStatus(ctx context.Context, pol policy.Policy, id, guild, status string) (*services.Location, error)
	// Move changes a record's channel and returns its message location.
	Move(ctx context.Context, pol policy.Policy, id, guild, channel string) (*services.Location, error)
	// Fetch returns zero or one record.
	Fetch(ctx context.Context, pol policy.Policy, guild, id string) ([]domain.Record, error)
	// FetchAll returns every record of a guild.
	FetchAll(ctx context.Context, pol policy.Policy, guild string) (*services.Snapshot, error)
}

// VoteService applies up and down votes to suggestions.
type VoteService interface {
	Cast(ctx context.Context, pol policy.Policy, in services.VoteInput, dir domain.Direction) (*services.VoteResult, error)
}

// StatsFunc reports stored record totals for the health endpoint.
type StatsFunc func(ctx context.Context) (repo.Counts, error)

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for records and votes.
type Handlers struct {
	records RecordService
	votes   VoteService
	stats   StatsFunc
}

// New constructs a Handlers instance bound to the given services. stats may
// be nil, in which case /health reports liveness only.
func New(records RecordService, votes VoteService, stats StatsFunc) *Handlers {
	return &Handlers{records: records, votes: votes, stats: stats}
}

// callerPolicy returns the policy stored by RequireAPIKey. A route mounted
// without the middleware fails closed.
func callerPolicy(c *gin.Context) (policy.Policy, bool) {
	pol, found := middleware.PolicyFrom(c)
	if !found {
		fail(c, ErrCodeUnauthorized, middleware.MsgInvalidToken)
	}
	return pol, found
}

// bind decodes the JSON body into req. Malformed JSON and absent or null
// required fields both answer missing_fields.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, ErrCodeMissingFields, MsgMissingFields)
		return false
	}
	return true
}
