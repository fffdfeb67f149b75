// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for suggestions and
// reports.
//
// Every function takes the record Kind resolved at the boundary instead of the
// raw id prefix, and every query is scoped by guild. Records are never deleted;
// only status and channel change after insert.
//
// Error semantics:
//   - ErrNotFound when no row matches (guild, id).
//   - ErrDuplicate when an insert collides with an existing id.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint violation on insert.
var ErrDuplicate = errors.New("duplicate")

// Location is where a record's rendered message lives.
type Location struct {
	Message string
	Channel string
}

// InsertRecord persists a new suggestion or report. CreatedAt is stamped here
// when the caller left it zero.
func InsertRecord(ctx context.Context, db *gorm.DB, rec domain.Record) error {
	switch r := rec.(type) {
	case *domain.Suggestion:
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		if r.Upvotes == nil {
			r.Upvotes = domain.VoteSet{}
		}
		if r.Downvotes == nil {
			r.Downvotes = domain.VoteSet{}
		}
	case *domain.Report:
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetRecord loads one record of the given kind by (guild, id).
func GetRecord(ctx context.Context, db *gorm.DB, kind domain.Kind, guild, id string) (domain.Record, error) {
	var rec domain.Record
	switch kind {
	case domain.KindSuggestion:
		rec = &domain.Suggestion{}
	case domain.KindReport:
		rec = &domain.Report{}
	default:
		return nil, domain.ErrInvalidID
	}
	err := db.WithContext(ctx).
		Where("guild = ? AND id = ?", guild, id).
		Take(rec).Error
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateStatus sets the status of (guild, id) and returns its location.
func UpdateStatus(ctx context.Context, db *gorm.DB, kind domain.Kind, guild, id, status string) (*Location, error) {
	return updateColumn(ctx, db, kind, guild, id, "status", status)
}

// UpdateChannel moves (guild, id) to channel and returns its new location.
func UpdateChannel(ctx context.Context, db *gorm.DB, kind domain.Kind, guild, id, channel string) (*Location, error) {
	return updateColumn(ctx, db, kind, guild, id, "channel", channel)
}

// updateColumn runs the write and the location read in one transaction so
// the returned location reflects the row as written.
func updateColumn(ctx context.Context, db *gorm.DB, kind domain.Kind, guild, id, column, value string) (*Location, error) {
	table := kind.Table()
	if table == "" {
		return nil, domain.ErrInvalidID
	}

	var loc Location
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).
			Where("guild = ? AND id = ?", guild, id).
			Update(column, value).Error; err != nil {
			return err
		}
		// RowsAffected is not used for existence: MySQL reports 0 for
		// a no-op write of an unchanged value.
		return tx.Table(table).
			Select("message", "channel").
			Where("guild = ? AND id = ?", guild, id).
			Take(&loc).Error
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListSuggestions returns every suggestion in guild, oldest first.
func ListSuggestions(ctx context.Context, db *gorm.DB, guild string) ([]domain.Suggestion, error) {
	out := make([]domain.Suggestion, 0)
	err := db.WithContext(ctx).
		Where("guild = ?", guild).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListReports returns every report in guild, oldest first.
func ListReports(ctx context.Context, db *gorm.DB, guild string) ([]domain.Report, error) {
	out := make([]domain.Report, 0)
	err := db.WithContext(ctx).
		Where("guild = ?", guild).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// isUniqueViolation recognizes unique-key errors across drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value") || // postgres
		strings.Contains(low, "duplicate entry") // mysql
}
