// Package services defines the business logic for verse ingestion, retrieval,
// user registration, and the music fetch flow.
//
// This file registers bot users idempotently on their first /start. There is no profile
// editing or deletion; the rows exist for the population counter only.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/repo"
)

// UserService records users on first contact.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Register stores the sender unless already known. It reports whether a new
// row was created; repeated /start messages are a no-op.
func (s *UserService) Register(ctx context.Context, telegramID int64, username, firstName, lastName string) (bool, error) {
	return repo.RegisterUser(ctx, s.DB, telegramID, username, firstName, lastName)
}
