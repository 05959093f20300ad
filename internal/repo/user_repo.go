// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
)

// RegisterUser inserts a user row for telegramID unless one already exists.
// It returns true when a new row was written. Registration is idempotent:
// the unique index on telegram_id absorbs concurrent first /start messages,
// and an existing row is never overwritten.
func RegisterUser(ctx context.Context, db *gorm.DB, telegramID int64, username, firstName, lastName string) (bool, error) {
	u := &domain.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountUsers returns the total number of registered users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Count(&total).Error
	return total, err
}
