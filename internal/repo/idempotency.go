// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to implement safe-retry semantics for POST endpoints.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/domain"
)

// IdemKey identifies one stored response: the caller (by API key hash), the
// route and the client-supplied key.
type IdemKey struct {
	APIKeyHash string
	Route      string
	Key        string
}

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, k IdemKey, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(k.Key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("api_key_hash = ? AND route = ? AND idem_key = ? AND expires_at > ?", k.APIKeyHash, k.Route, k.Key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency stores a response and returns ErrDuplicate on unique
// violation. An expired row holding the same key is replaced.
func CreateIdempotency(ctx context.Context, db *gorm.DB, k IdemKey, requestHash, response string, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:          uuid.NewString(),
		APIKeyHash:  k.APIKeyHash,
		Route:       k.Route,
		Key:         k.Key,
		RequestHash: requestHash,
		Response:    response,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("api_key_hash = ? AND route = ? AND idem_key = ? AND expires_at <= ?", k.APIKeyHash, k.Route, k.Key, now).
			Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeIdempotency deletes every record that expired at or before now and
// returns how many rows were removed.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
