// Package services – RecordService
//
// This file implements RecordService, the gateway for suggestion and report
// records. Every operation first checks the caller's guild scope, then
// resolves the record kind from the id prefix, then touches the store under
// the configured deadline. Writes invalidate the guild's cached fetchall
// snapshot.
//
// Observability: all public methods are OpenTelemetry-instrumented and
// counted in feedback_operations_total.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/cache"
	"github.com/codedsnow/feedback-api/internal/domain"
	"github.com/codedsnow/feedback-api/internal/policy"
	"github.com/codedsnow/feedback-api/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Location is where a record's rendered message lives.
type Location = repo.Location

// Snapshot is every record of one guild.
type Snapshot = domain.Snapshot

// SubmitInput carries the fields of a new record. The id prefix selects the
// kind; suggestions start with empty vote sets.
type SubmitInput struct {
	ID      string
	Context string
	Author  string
	Avatar  string
	Guild   string
	Channel string
	Message string
	Status  string
}

// RecordService persists and retrieves suggestions and reports.
type RecordService struct {
	DB      *gorm.DB
	Cache   cache.Store   // nil disables caching
	Timeout time.Duration // per-operation store deadline; 0 disables
}

// Submit inserts a new record.
func (s *RecordService) Submit(ctx context.Context, pol policy.Policy, in SubmitInput) (err error) {
	ctx, span := s.start(ctx, "Submit", in.Guild, in.ID)
	defer span.End()
	defer func() { observe("submit", err) }()

	if !pol.Allows(in.Guild) {
		return ErrForbidden
	}
	kind, err := domain.ParseKind(in.ID)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	rec := domain.NewRecord(kind, domain.RecordFields{
		ID:      in.ID,
		Context: in.Context,
		Author:  in.Author,
		Avatar:  in.Avatar,
		Guild:   in.Guild,
		Channel: in.Channel,
		Message: in.Message,
		Status:  in.Status,
	})
	if err := repo.InsertRecord(ctx, s.DB, rec); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateRecord
		}
		return storeErr("submit", err)
	}
	s.store().Invalidate(ctx, in.Guild)
	return nil
}

// SetStatus changes the status of (guild, id) and returns where the record's
// message lives so the caller can re-render it.
func (s *RecordService) SetStatus(ctx context.Context, pol policy.Policy, id, guild, status string) (loc *Location, err error) {
	ctx, span := s.start(ctx, "SetStatus", guild, id)
	defer span.End()
	defer func() { observe("setstatus", err) }()

	return s.update(ctx, pol, id, guild, func(ctx context.Context, kind domain.Kind) (*Location, error) {
		return repo.UpdateStatus(ctx, s.DB, kind, guild, id, status)
	})
}

// Move records that (guild, id) now lives in channel.
func (s *RecordService) Move(ctx context.Context, pol policy.Policy, id, guild, channel string) (loc *Location, err error) {
	ctx, span := s.start(ctx, "Move", guild, id)
	defer span.End()
	defer func() { observe("move", err) }()

	return s.update(ctx, pol, id, guild, func(ctx context.Context, kind domain.Kind) (*Location, error) {
		return repo.UpdateChannel(ctx, s.DB, kind, guild, id, channel)
	})
}

func (s *RecordService) update(ctx context.Context, pol policy.Policy, id, guild string,
	write func(context.Context, domain.Kind) (*Location, error)) (*Location, error) {
	if !pol.Allows(guild) {
		return nil, ErrForbidden
	}
	kind, err := domain.ParseKind(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	loc, err := write(ctx, kind)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, storeErr("update", err)
	}
	s.store().Invalidate(ctx, guild)
	return loc, nil
}

// Fetch returns the record (guild, id) as a one-element list, or an empty
// list when it does not exist.
func (s *RecordService) Fetch(ctx context.Context, pol policy.Policy, guild, id string) (out []domain.Record, err error) {
	ctx, span := s.start(ctx, "Fetch", guild, id)
	defer span.End()
	defer func() { observe("fetch", err) }()

	if !pol.Allows(guild) {
		return nil, ErrForbidden
	}
	kind, err := domain.ParseKind(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	rec, err := repo.GetRecord(ctx, s.DB, kind, guild, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []domain.Record{}, nil
		}
		return nil, storeErr("fetch", err)
	}
	return []domain.Record{rec}, nil
}

// FetchAll returns every suggestion and report of guild. Empty guilds yield
// empty, non-nil lists.
func (s *RecordService) FetchAll(ctx context.Context, pol policy.Policy, guild string) (snap *Snapshot, err error) {
	ctx, span := s.start(ctx, "FetchAll", guild, "")
	defer span.End()
	defer func() { observe("fetchall", err) }()

	if !pol.Allows(guild) {
		return nil, ErrForbidden
	}
	// One deadline covers the cache read, the store reads and the refill.
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if cached, ok := s.store().Get(ctx, guild); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	suggestions, err := repo.ListSuggestions(ctx, s.DB, guild)
	if err != nil {
		return nil, storeErr("fetchall", err)
	}
	reports, err := repo.ListReports(ctx, s.DB, guild)
	if err != nil {
		return nil, storeErr("fetchall", err)
	}
	snap = &Snapshot{Suggestions: suggestions, Reports: reports}
	s.store().Set(ctx, guild, snap)
	return snap, nil
}

func (s *RecordService) start(ctx context.Context, name, guild, id string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("guild.id", guild)}
	if id != "" {
		attrs = append(attrs, attribute.String("record.id", id))
	}
	return otel.Tracer("services/RecordService").Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *RecordService) store() cache.Store { return orNop(s.Cache) }

func orNop(c cache.Store) cache.Store {
	if c == nil {
		return cache.Nop{}
	}
	return c
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
