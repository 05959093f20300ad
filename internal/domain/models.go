// Package domain defines the persistence models for verses, users, and
// processed updates. These types are mapped with GORM and form the core data
// layer of the bot.
package domain

import "time"

// Verse is a single indexed ayah: chapter name, verse number, optional text,
// and an optional Telegram audio file id referencing a recitation held by
// Telegram (never stored locally).
//
// Verses are append-only: they are created once by the admin ingestion path
// and never updated or deleted.
//
// Fields:
//   - ID: autoincrement surrogate key; insertion order for deterministic listing.
//   - UID: stable identity "{origin_chat_id}_{origin_message_id}", unique.
//     Inline selections carry this value as their token.
//   - Sura: chapter/section name, required.
//   - VerseNumber: verse number as text; may encode ranges like "1-5".
//   - Text: verse text, may be empty.
//   - AudioFileID: Telegram file id of the recitation, may be empty.
//   - OriginChatID / OriginMessageID: forward provenance, used only to derive UID.
//   - CreatedAt: set at insertion, never mutated.
type Verse struct {
	ID              uint      `json:"-"                gorm:"primaryKey"`
	UID             string    `json:"uid"              gorm:"type:varchar(150);not null;uniqueIndex:ux_verses_uid"`
	Sura            string    `json:"sura"             gorm:"type:varchar(100);not null"`
	VerseNumber     string    `json:"verse_number"     gorm:"type:varchar(20);not null"`
	Text            string    `json:"text,omitempty"   gorm:"type:text"`
	AudioFileID     string    `json:"audio,omitempty"  gorm:"type:varchar(255)"`
	OriginChatID    string    `json:"-"                gorm:"type:varchar(50)"`
	OriginMessageID string    `json:"-"                gorm:"type:varchar(50)"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for Verse.
func (Verse) TableName() string { return "verses" }

// HasAudio reports whether the verse carries a recitation file id.
func (v Verse) HasAudio() bool { return v.AudioFileID != "" }

// User is a bot user registered idempotently on first /start. Rows are
// read-only afterward and feed only the population counter.
type User struct {
	ID         uint      `json:"-"          gorm:"primaryKey"`
	TelegramID int64     `json:"telegram_id" gorm:"not null;uniqueIndex:ux_users_telegram_id"`
	Username   string    `json:"username"    gorm:"type:varchar(64)"`
	FirstName  string    `json:"first_name"  gorm:"type:varchar(128)"`
	LastName   string    `json:"last_name"   gorm:"type:varchar(128)"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// ProcessedUpdate records a Telegram update id that has already been handled.
// Telegram redelivers webhook updates until it sees a 2xx, so the unique index
// on UpdateID is what keeps redelivered updates from being processed twice.
// Rows are pruned after a retention window.
type ProcessedUpdate struct {
	ID        uint      `gorm:"primaryKey"`
	UpdateID  int64     `gorm:"not null;uniqueIndex:ux_processed_update_id"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the database table name for ProcessedUpdate.
func (ProcessedUpdate) TableName() string { return "processed_updates" }
