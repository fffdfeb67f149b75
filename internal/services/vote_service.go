// Package services – VoteService
//
// VoteService records up and down votes on suggestions. A user sits in at
// most one of the two vote sets. Both directions share one routine: load the
// suggestion, reject a repeat vote, move the user into the target set, then
// write both sets with a compare-and-swap on vote_version. Losing the swap
// means another vote landed in between, so the routine reloads and tries
// again up to MaxAttempts times.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/cache"
	"github.com/codedsnow/feedback-api/internal/domain"
	"github.com/codedsnow/feedback-api/internal/policy"
	"github.com/codedsnow/feedback-api/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultVoteAttempts bounds compare-and-swap retries when MaxAttempts is unset.
const DefaultVoteAttempts = 8

// VoteInput identifies the suggestion by its rendered message and the voter.
type VoteInput struct {
	Message string
	Guild   string
	User    string
}

// VoteResult is the state of both sets after the vote.
type VoteResult struct {
	Upvotes   domain.VoteSet
	Downvotes domain.VoteSet
}

// VoteService applies votes to suggestions.
type VoteService struct {
	DB          *gorm.DB
	Cache       cache.Store
	Timeout     time.Duration
	MaxAttempts int
}

// Cast adds in.User to the dir set of the suggestion and removes them from
// the opposite set.
func (s *VoteService) Cast(ctx context.Context, pol policy.Policy, in VoteInput, dir domain.Direction) (res *VoteResult, err error) {
	ctx, span := otel.Tracer("services/VoteService").Start(ctx, "Cast",
		trace.WithAttributes(
			attribute.String("guild.id", in.Guild),
			attribute.String("message.id", in.Message),
			attribute.String("vote.direction", dir.String()),
		),
	)
	defer span.End()
	defer func() {
		votesTotal.WithLabelValues(dir.String(), resultLabel(err)).Inc()
		observe(dir.String()+"vote", err)
	}()

	if !pol.Allows(in.Guild) {
		return nil, ErrForbidden
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultVoteAttempts
	}
	log := zerolog.Ctx(ctx)

	for attempt := 1; attempt <= attempts; attempt++ {
		sug, err := repo.GetSuggestionByMessage(ctx, s.DB, in.Guild, in.Message)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrSuggestionNotFound
			}
			return nil, storeErr("vote", err)
		}

		target, opposite := dir.Sets(sug)
		if target.Has(in.User) {
			return nil, alreadyVoted(dir)
		}
		target.Add(in.User)
		opposite.Remove(in.User)

		ok, err := repo.SwapVotes(ctx, s.DB, sug.ID, sug.VoteVersion, sug.Upvotes, sug.Downvotes)
		if err != nil {
			return nil, storeErr("vote", err)
		}
		if ok {
			span.SetAttributes(attribute.Int("vote.attempts", attempt))
			orNop(s.Cache).Invalidate(ctx, in.Guild)
			return &VoteResult{Upvotes: sug.Upvotes, Downvotes: sug.Downvotes}, nil
		}

		voteRetries.Inc()
		log.Debug().Str("suggestion", sug.ID).Int("attempt", attempt).Msg("vote lost a concurrent update, retrying")
		if err := ctx.Err(); err != nil {
			return nil, storeErr("vote", err)
		}
	}
	return nil, ErrVoteContention
}

func alreadyVoted(dir domain.Direction) error {
	if dir == domain.Down {
		return ErrAlreadyDownvoted
	}
	return ErrAlreadyUpvoted
}
