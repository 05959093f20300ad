// Package services defines the business logic for verse ingestion, retrieval,
// user registration, and the music fetch flow. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing replies is performed by the bot dispatcher.
package services

import "errors"

// Ingestion errors.
var (
	// ErrNotAdmin indicates that a non-admin sender attempted ingestion.
	// The store is never touched in this case.
	ErrNotAdmin = errors.New("sender is not the admin")

	// ErrNoForwardOrigin is returned when the ingested message carries no
	// forwarded-message origin to derive a uid from.
	ErrNoForwardOrigin = errors.New("message has no forward origin")

	// ErrBadCaption is returned when the caption is missing or does not split
	// into sura and verse number on a single '|' separator.
	ErrBadCaption = errors.New("caption must be \"sura|verse\"")

	// ErrDuplicateVerse indicates the uid is already indexed. Informational,
	// not fatal: the originally stored verse is left unchanged.
	ErrDuplicateVerse = errors.New("verse already indexed")
)

// Retrieval errors.
var (
	// ErrVerseNotFound indicates that no verse exists for the requested uid.
	ErrVerseNotFound = errors.New("verse not found")

	// ErrNoVerses indicates a random request against an empty store.
	ErrNoVerses = errors.New("no verses available")

	// ErrQueryTooShort is returned when free text is too short to search on.
	ErrQueryTooShort = errors.New("query too short")

	// ErrNoResults indicates a search that matched nothing.
	ErrNoResults = errors.New("no search results")
)

// Provider errors.
var (
	// ErrProviderFailure wraps any failure of the external search/download
	// provider. Users get a generic retry message; details go to the log.
	ErrProviderFailure = errors.New("provider failure")
)
