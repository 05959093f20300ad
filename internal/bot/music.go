package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carol444game-cell/quroni-karim/internal/services"
)

// Music-bot reply texts.
const (
	msgMusicStart = "Salom, %s! 👋\n" +
		"Men qo'shiq qidiruvchi botman. Menga qo'shiq nomini yuboring."
	msgMusicNoResult = "❌ Afsuski, bu so'z bo'yicha natija topilmadi."
	msgMusicFailure  = "❌ Qo'shiqni topish yoki yuklab olishda xatolik yuz berdi. " +
		"Iltimos, boshqa nom bilan urinib ko'ring."
	msgMusicEmpty = "🎵 Menga qo'shiq nomini yuboring."
)

// MusicDispatcher routes music-bot events: any free text is a song query.
type MusicDispatcher struct {
	Music *services.MusicService
	Log   zerolog.Logger
}

// Handle implements Handler for the music bot.
//
// A successful fetch hands the temp artifact to the caller through
// Reply.AudioPath; Reply.Close releases it after sending. On every failure
// path the dispatcher releases the artifact itself before returning.
func (d *MusicDispatcher) Handle(ctx context.Context, ev Event) (*Reply, error) {
	switch ev.Kind {
	case KindStart:
		observe(ev.Kind, OutcomeOK)
		name := strings.TrimSpace(ev.Sender.FirstName + " " + ev.Sender.LastName)
		if name == "" {
			name = ev.Sender.Username
		}
		return &Reply{Text: fmt.Sprintf(msgMusicStart, name)}, nil

	case KindTextMessage:
		return d.handleQuery(ctx, ev)

	default:
		// Forwards and callbacks have no meaning here; ignore them quietly.
		observe(ev.Kind, OutcomeRejected)
		return nil, nil
	}
}

func (d *MusicDispatcher) handleQuery(ctx context.Context, ev Event) (*Reply, error) {
	query := strings.TrimSpace(ev.Text)
	if query == "" {
		observe(ev.Kind, OutcomeRejected)
		return &Reply{Text: msgMusicEmpty}, nil
	}

	d.Log.Info().Str("query", query).Int64("chat_id", ev.ChatID).Msg("music query")

	track, cleanup, err := d.Music.Fetch(ctx, query)
	switch {
	case err == nil:
		observe(ev.Kind, OutcomeOK)
		return &Reply{
			Text:      "🎵 " + track.Title,
			AudioPath: track.Path,
			Performer: track.Performer,
			cleanup:   cleanup,
		}, nil
	case errors.Is(err, services.ErrNoResults):
		cleanup()
		observe(ev.Kind, OutcomeNotFound)
		return &Reply{Text: msgMusicNoResult}, nil
	default:
		cleanup()
		observe(ev.Kind, OutcomeError)
		// The user gets one generic retry message; details go to the log.
		d.Log.Error().Err(err).Str("query", query).Msg("music fetch failed")
		return &Reply{Text: msgMusicFailure}, nil
	}
}
