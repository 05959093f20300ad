package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
	"github.com/carol444game-cell/quroni-karim/internal/repo"
)

const testAdminID int64 = 777

// verseRepoShim adapts the repo free functions to the VerseRepo interface.
type verseRepoShim struct{}

func (verseRepoShim) InsertVerseIfAbsent(ctx context.Context, db *gorm.DB, v *domain.Verse) (bool, error) {
	return repo.InsertVerseIfAbsent(ctx, db, v)
}
func (verseRepoShim) GetVerseByUID(ctx context.Context, db *gorm.DB, uid string) (*domain.Verse, error) {
	return repo.GetVerseByUID(ctx, db, uid)
}
func (verseRepoShim) SearchVerses(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Verse, error) {
	return repo.SearchVerses(ctx, db, query, limit)
}
func (verseRepoShim) CountVerses(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountVerses(ctx, db)
}
func (verseRepoShim) RandomVerse(ctx context.Context, db *gorm.DB) (*domain.Verse, error) {
	return repo.RandomVerse(ctx, db)
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("verse_svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Verse{}, &domain.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newVerseService(t *testing.T) *VerseService {
	t.Helper()
	return NewVerseService(newServiceDB(t), verseRepoShim{}, testAdminID)
}

func adminInput() IngestInput {
	return IngestInput{
		SenderID:        testAdminID,
		Caption:         "Al-Baqarah|255",
		OriginChatID:    100,
		OriginMessageID: 5,
	}
}

// --- Ingest ---

func TestIngest_SuccessAndRoundTrip(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	in := adminInput()
	in.Text = "Allohu la ilaha illa huwa"
	v, err := svc.Ingest(ctx, in)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if v.UID != "100_5" {
		t.Fatalf("uid = %q, want 100_5", v.UID)
	}

	got, err := svc.Get(ctx, "100_5")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Sura != "Al-Baqarah" || got.VerseNumber != "255" || got.AudioFileID != "" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.Text != "Allohu la ilaha illa huwa" {
		t.Fatalf("text mismatch: %q", got.Text)
	}
}

func TestIngest_DuplicateUIDKeepsOriginal(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, adminInput()); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	in := adminInput()
	in.Caption = "Changed|1"
	_, err := svc.Ingest(ctx, in)
	if !errors.Is(err, ErrDuplicateVerse) {
		t.Fatalf("expected ErrDuplicateVerse, got %v", err)
	}

	got, err := svc.Get(ctx, "100_5")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Sura != "Al-Baqarah" || got.VerseNumber != "255" {
		t.Fatalf("original row mutated: %+v", got)
	}
}

func TestIngest_NonAdminNeverTouchesStore(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	in := adminInput()
	in.SenderID = testAdminID + 1 // valid caption, wrong sender
	_, err := svc.Ingest(ctx, in)
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	if n, _ := repo.CountVerses(ctx, svc.DB); n != 0 {
		t.Fatalf("store mutated by non-admin: %d rows", n)
	}
}

func TestIngest_MissingForwardOrigin(t *testing.T) {
	svc := newVerseService(t)

	in := adminInput()
	in.OriginChatID = 0
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, ErrNoForwardOrigin) {
		t.Fatalf("expected ErrNoForwardOrigin, got %v", err)
	}

	in = adminInput()
	in.OriginMessageID = 0
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, ErrNoForwardOrigin) {
		t.Fatalf("expected ErrNoForwardOrigin, got %v", err)
	}
}

func TestIngest_BadCaptionNeverMutatesStore(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	for _, caption := range []string{"", "   ", "no separator", "a|b|c", "|255", "Al-Baqarah|", " | "} {
		in := adminInput()
		in.Caption = caption
		if _, err := svc.Ingest(ctx, in); !errors.Is(err, ErrBadCaption) {
			t.Fatalf("caption %q: expected ErrBadCaption, got %v", caption, err)
		}
	}
	if n, _ := repo.CountVerses(ctx, svc.DB); n != 0 {
		t.Fatalf("store mutated by bad caption: %d rows", n)
	}
}

func TestParseCaption_TrimsAndNormalizes(t *testing.T) {
	sura, num, err := ParseCaption("  Al-Baqarah  |  255  ")
	if err != nil {
		t.Fatalf("ParseCaption: %v", err)
	}
	if sura != "Al-Baqarah" || num != "255" {
		t.Fatalf("parsed (%q, %q)", sura, num)
	}

	// Verse numbers may encode ranges.
	_, num, err = ParseCaption("Yasin|1-5")
	if err != nil || num != "1-5" {
		t.Fatalf("range parse: num=%q err=%v", num, err)
	}
}

// --- Retrieval ---

func TestGet_NotFound(t *testing.T) {
	svc := newVerseService(t)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrVerseNotFound) {
		t.Fatalf("expected ErrVerseNotFound, got %v", err)
	}
}

func TestSearch_TooShortAndNoResults(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "  a "); !errors.Is(err, ErrQueryTooShort) {
		t.Fatalf("expected ErrQueryTooShort, got %v", err)
	}
	if _, err := svc.Search(ctx, "zz"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestSearch_FindsIngestedVerse(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, adminInput()); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	got, err := svc.Search(ctx, "baqa")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].UID != "100_5" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestRandom_EmptyThenSingle(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	if _, err := svc.Random(ctx); !errors.Is(err, ErrNoVerses) {
		t.Fatalf("expected ErrNoVerses, got %v", err)
	}

	if _, err := svc.Ingest(ctx, adminInput()); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	v, err := svc.Random(ctx)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if v.UID != "100_5" {
		t.Fatalf("random returned %q, want the only stored verse", v.UID)
	}
}

func TestStats_Counters(t *testing.T) {
	svc := newVerseService(t)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, adminInput()); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := repo.RegisterUser(ctx, svc.DB, 1, "", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := repo.RegisterUser(ctx, svc.DB, 2, "", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	verses, users, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if verses != 1 || users != 2 {
		t.Fatalf("stats = (%d, %d), want (1, 2)", verses, users)
	}
}
