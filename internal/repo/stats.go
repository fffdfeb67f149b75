// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used by the
// health endpoint to prove the store is reachable and migrated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/domain"
)

// Counts is the total number of stored records per kind.
type Counts struct {
	Suggestions int64 `json:"suggestions"`
	Reports     int64 `json:"reports"`
}

// CountRecords counts suggestions and reports across all guilds.
func CountRecords(ctx context.Context, db *gorm.DB) (Counts, error) {
	var c Counts
	if err := db.WithContext(ctx).Model(&domain.Suggestion{}).Count(&c.Suggestions).Error; err != nil {
		return Counts{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Report{}).Count(&c.Reports).Error; err != nil {
		return Counts{}, err
	}
	return c, nil
}
