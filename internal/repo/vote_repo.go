package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/domain"
)

// GetSuggestionByMessage loads the suggestion rendered as message in guild.
// Returns ErrNotFound if none exists.
func GetSuggestionByMessage(ctx context.Context, db *gorm.DB, guild, message string) (*domain.Suggestion, error) {
	var s domain.Suggestion
	err := db.WithContext(ctx).
		Where("guild = ? AND message = ?", guild, message).
		Order("created_at ASC, id ASC").
		Take(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SwapVotes writes both vote sets if the row is still at version. It reports
// false when another writer got there first; the caller reloads and retries.
func SwapVotes(ctx context.Context, db *gorm.DB, id string, version int64, up, down domain.VoteSet) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Suggestion{}).
		Where("id = ? AND vote_version = ?", id, version).
		Updates(map[string]any{
			"upvotes":      up,
			"downvotes":    down,
			"vote_version": gorm.Expr("vote_version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
