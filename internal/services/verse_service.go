// Package services defines the business logic for verse ingestion, retrieval,
// user registration, and the music fetch flow.
//
// This file implements the VerseService, which owns the ingestion and
// retrieval use-cases over the verse store. Ingestion validates the admin
// identity, the forward origin, and the "sura|verse" caption before deriving
// the uid and inserting; retrieval covers exact uid lookup, bounded substring
// search, uniform random selection, and the stats counters. Service-level
// errors (ErrNotAdmin, ErrBadCaption, ErrDuplicateVerse, ...) are returned for
// predictable cases so the dispatcher can map them to replies consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
	"github.com/carol444game-cell/quroni-karim/internal/repo"
	"github.com/carol444game-cell/quroni-karim/internal/search"
)

// VerseRepo defines the repository contract required by VerseService.
// Implementations are responsible for persistence of verse rows.
type VerseRepo interface {
	// InsertVerseIfAbsent writes v unless its uid exists; reports whether it wrote.
	InsertVerseIfAbsent(ctx context.Context, db *gorm.DB, v *domain.Verse) (bool, error)

	// GetVerseByUID fetches a verse by uid, or repo.ErrNotFound.
	GetVerseByUID(ctx context.Context, db *gorm.DB, uid string) (*domain.Verse, error)

	// SearchVerses returns up to limit case-insensitive substring matches.
	SearchVerses(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Verse, error)

	// CountVerses returns the total number of stored verses.
	CountVerses(ctx context.Context, db *gorm.DB) (int64, error)

	// RandomVerse returns a uniformly random stored verse, or repo.ErrNotFound.
	RandomVerse(ctx context.Context, db *gorm.DB) (*domain.Verse, error)
}

// IngestInput carries everything the ingestion path needs from one inbound
// admin message, already detached from any transport SDK types.
type IngestInput struct {
	SenderID        int64  // Telegram id of the sender
	Caption         string // expected "sura|verse"
	Text            string // message text, stored as the verse text (may be empty)
	AudioFileID     string // Telegram audio file id, if the message carries audio
	OriginChatID    int64  // forwarded-from chat id; zero when not forwarded
	OriginMessageID int64  // forwarded-from message id; zero when not forwarded
}

// VerseService provides verse-level operations: admin ingestion and the three
// read paths (uid lookup, substring search, random selection).
type VerseService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the verse repository used by this service.
	Repo VerseRepo

	// AdminID is the only Telegram identity allowed to ingest. A single int64
	// compared exactly; no string coercion anywhere on the auth path.
	AdminID int64
	// SearchLimit caps search results per query.
	SearchLimit int
	// CountUsers supplies the user population for Stats; nil disables the count.
	CountUsers func(ctx context.Context, db *gorm.DB) (int64, error)
}

// NewVerseService constructs a VerseService with the default result cap.
func NewVerseService(db *gorm.DB, r VerseRepo, adminID int64) *VerseService {
	return &VerseService{
		DB:          db,
		Repo:        r,
		AdminID:     adminID,
		SearchLimit: 10,
		CountUsers:  repo.CountUsers,
	}
}

// Ingest validates in and inserts a new verse derived from it.
//
// Validation order (first failure wins, store untouched):
//   - sender must be the configured admin  -> ErrNotAdmin
//   - a forward origin must be present     -> ErrNoForwardOrigin
//   - caption must split on a single '|'
//     into non-empty sura and verse number -> ErrBadCaption
//
// On success the uid is "{origin_chat_id}_{origin_message_id}". A uid that is
// already indexed yields ErrDuplicateVerse and leaves the stored row unchanged.
func (s *VerseService) Ingest(ctx context.Context, in IngestInput) (*domain.Verse, error) {
	if in.SenderID != s.AdminID {
		return nil, ErrNotAdmin
	}
	if in.OriginChatID == 0 || in.OriginMessageID == 0 {
		return nil, ErrNoForwardOrigin
	}

	sura, number, err := ParseCaption(in.Caption)
	if err != nil {
		return nil, err
	}

	v := &domain.Verse{
		UID:             fmt.Sprintf("%d_%d", in.OriginChatID, in.OriginMessageID),
		Sura:            sura,
		VerseNumber:     number,
		Text:            search.Normalize(in.Text),
		AudioFileID:     in.AudioFileID,
		OriginChatID:    fmt.Sprintf("%d", in.OriginChatID),
		OriginMessageID: fmt.Sprintf("%d", in.OriginMessageID),
	}

	created, err := s.Repo.InsertVerseIfAbsent(ctx, s.DB, v)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrDuplicateVerse
	}
	return v, nil
}

// Get fetches a verse by its uid, returning ErrVerseNotFound when absent.
func (s *VerseService) Get(ctx context.Context, uid string) (*domain.Verse, error) {
	v, err := s.Repo.GetVerseByUID(ctx, s.DB, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVerseNotFound
		}
		return nil, err
	}
	return v, nil
}

// Search normalizes query and returns up to SearchLimit matches over sura name
// and text. Queries shorter than two runes after trimming are rejected with
// ErrQueryTooShort; a query that matches nothing yields ErrNoResults.
func (s *VerseService) Search(ctx context.Context, query string) ([]domain.Verse, error) {
	query = search.Normalize(query)
	if !search.IsQuery(query) {
		return nil, ErrQueryTooShort
	}

	limit := s.SearchLimit
	if limit <= 0 {
		limit = 10
	}
	out, err := s.Repo.SearchVerses(ctx, s.DB, query, limit)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

// Random returns a uniformly random stored verse, or ErrNoVerses when the
// store is empty.
func (s *VerseService) Random(ctx context.Context) (*domain.Verse, error) {
	v, err := s.Repo.RandomVerse(ctx, s.DB)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoVerses
		}
		return nil, err
	}
	return v, nil
}

// Stats returns the verse and user population counters.
func (s *VerseService) Stats(ctx context.Context) (verses, users int64, err error) {
	verses, err = s.Repo.CountVerses(ctx, s.DB)
	if err != nil {
		return 0, 0, err
	}
	if s.CountUsers != nil {
		users, err = s.CountUsers(ctx, s.DB)
		if err != nil {
			return 0, 0, err
		}
	}
	return verses, users, nil
}

// ParseCaption splits a "sura|verse" caption into its normalized halves.
// Exactly one '|' is required and both halves must be non-empty after
// normalization; anything else is ErrBadCaption.
func ParseCaption(caption string) (sura, number string, err error) {
	caption = search.Normalize(caption)
	if caption == "" {
		return "", "", ErrBadCaption
	}
	parts := strings.Split(caption, "|")
	if len(parts) != 2 {
		return "", "", ErrBadCaption
	}
	sura = search.Normalize(parts[0])
	number = search.Normalize(parts[1])
	if sura == "" || number == "" {
		return "", "", ErrBadCaption
	}
	return sura, number, nil
}
