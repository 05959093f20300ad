// Package services defines the business logic for verse ingestion, retrieval,
// user registration, and the music fetch flow.
//
// This file implements the music bot's single use-case: take a free-text
// query, find the top YouTube hit, pull its audio into a temp file, and hand
// the file to the transport for sending. Every provider failure is wrapped in
// ErrProviderFailure (users get one generic retry message), and the fetched
// artifact is removed on all paths, success or failure, before the handler
// returns.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/carol444game-cell/quroni-karim/internal/youtube"
)

// MusicProvider abstracts the external search/download provider so the
// service (and its tests) never touch the network directly.
type MusicProvider interface {
	// Search returns up to limit videos matching query, best match first.
	Search(ctx context.Context, query string, limit int) ([]youtube.Video, error)

	// Download fetches the best audio of v into dir and returns the file path.
	// Implementations must not leave partial files behind on error.
	Download(ctx context.Context, v youtube.Video, dir string) (string, error)
}

// Track is a fetched audio artifact ready to send.
type Track struct {
	Title     string
	Performer string
	Path      string // local temp file; removed by the cleanup func
}

// MusicService coordinates search and download against the provider.
type MusicService struct {
	// Provider performs the external search/download calls.
	Provider MusicProvider
	// DownloadDir receives temp artifacts; created on demand.
	DownloadDir string
	// Timeout bounds one full fetch (search + download).
	Timeout time.Duration
}

// Fetch resolves query to the top search hit and downloads its audio.
//
// The returned cleanup func removes the downloaded file and must be called on
// every path once the caller is done with it (it is safe when Fetch failed).
// Error cases:
//   - no hits -> ErrNoResults
//   - any provider failure -> error wrapping ErrProviderFailure
func (s *MusicService) Fetch(ctx context.Context, query string) (*Track, func(), error) {
	cleanup := func() {}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(s.DownloadDir, 0o755); err != nil {
		return nil, cleanup, fmt.Errorf("%w: create download dir: %v", ErrProviderFailure, err)
	}

	hits, err := s.Provider.Search(ctx, query, 1)
	if err != nil {
		return nil, cleanup, fmt.Errorf("%w: search: %v", ErrProviderFailure, err)
	}
	if len(hits) == 0 {
		return nil, cleanup, ErrNoResults
	}
	top := hits[0]

	path, err := s.Provider.Download(ctx, top, s.DownloadDir)
	if err != nil {
		if path != "" {
			_ = os.Remove(path)
		}
		return nil, cleanup, fmt.Errorf("%w: download %s: %v", ErrProviderFailure, top.ID, err)
	}
	cleanup = func() { _ = os.Remove(path) }

	return &Track{
		Title:     top.Title,
		Performer: top.Channel,
		Path:      path,
	}, cleanup, nil
}

// IsProviderFailure reports whether err belongs to the external-provider
// failure class (as opposed to an empty result).
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrProviderFailure)
}
