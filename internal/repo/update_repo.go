// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// ProcessedUpdate model used to deduplicate redelivered Telegram updates.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
)

// MarkUpdateProcessed records updateID as handled. It returns true when the id
// was unseen and false when a row for it already exists (a redelivery).
// The unique index on update_id makes the check-and-mark atomic under
// concurrent deliveries of the same update.
func MarkUpdateProcessed(ctx context.Context, db *gorm.DB, updateID int64) (bool, error) {
	rec := &domain.ProcessedUpdate{
		UpdateID:  updateID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PruneProcessedUpdates deletes dedup rows created before cutoff and returns
// the number of rows removed. Telegram stops redelivering long before any
// sane retention window, so pruning is safe housekeeping.
func PruneProcessedUpdates(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.ProcessedUpdate{})
	return res.RowsAffected, res.Error
}
