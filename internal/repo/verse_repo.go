// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Verse model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a verse is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - InsertVerseIfAbsent never surfaces unique-constraint violations as
//     errors: a duplicate uid is reported as (false, nil) so the caller can
//     treat it as an informational outcome.
//   - On other DB errors (connectivity issues, missing tables, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertVerseIfAbsent inserts v unless a verse with the same UID already
// exists. It returns true when the row was written and false when the uid was
// already present; in the duplicate case the stored row is left untouched.
//
// Atomicity relies on the unique index on uid: concurrent inserts with the
// same uid race inside the database, and exactly one wins. There is no
// check-then-write window.
func InsertVerseIfAbsent(ctx context.Context, db *gorm.DB, v *domain.Verse) (bool, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetVerseByUID fetches a single verse by its uid. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetVerseByUID(ctx context.Context, db *gorm.DB, uid string) (*domain.Verse, error) {
	var v domain.Verse
	err := db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SearchVerses returns up to limit verses whose sura name or text contains
// query case-insensitively, in insertion order. LIKE wildcards in the query
// are escaped so user input cannot widen the match.
func SearchVerses(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Verse, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var out []domain.Verse
	err := db.WithContext(ctx).
		Where("lower(sura) LIKE ? ESCAPE '\\' OR lower(text) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("id asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountVerses returns the total number of stored verses.
func CountVerses(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Verse{}).
		Count(&total).Error
	return total, err
}

// RandomVerse returns a uniformly random stored verse, or ErrNotFound when the
// store is empty.
//
// The offset is taken into the id-ordered row set, not computed from id
// arithmetic, so gaps in the id sequence cannot bias the selection: every
// stored row occupies exactly one offset.
func RandomVerse(ctx context.Context, db *gorm.DB) (*domain.Verse, error) {
	total, err := CountVerses(ctx, db)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNotFound
	}

	var v domain.Verse
	err = db.WithContext(ctx).
		Order("id asc").
		Offset(rand.Intn(int(total))).
		Limit(1).
		Find(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == 0 {
		// Row count changed between the two queries; extremely unlikely with
		// an append-only table, but keep the contract honest.
		return nil, ErrNotFound
	}
	return &v, nil
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// escapeLike backslash-escapes the SQL LIKE wildcards in s.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
