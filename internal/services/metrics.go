package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// opsTotal counts gateway and vote operations by outcome.
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_operations_total",
			Help: "Record and vote operations by result.",
		},
		[]string{"op", "result"},
	)

	// votesTotal counts vote attempts by direction and outcome.
	votesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_votes_total",
			Help: "Votes cast by direction and result.",
		},
		[]string{"direction", "result"},
	)

	// voteRetries counts compare-and-swap retries.
	voteRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_vote_retries_total",
			Help: "Vote writes retried after losing a concurrent update.",
		},
	)
)

func init() {
	prometheus.MustRegister(opsTotal, votesTotal, voteRetries)
}

// resultLabel keeps the result label to a small fixed set.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrSuggestionNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyUpvoted), errors.Is(err, ErrAlreadyDownvoted):
		return "already_voted"
	case errors.Is(err, ErrDuplicateRecord):
		return "conflict"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}

func observe(op string, err error) {
	opsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}
