package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carol444game-cell/quroni-karim/internal/services"
)

// User-facing reply texts. The bot speaks Uzbek, like its audience.
const (
	msgStart = "🌟 Assalomu alaykum!\n\n" +
		"Oyat qidirish uchun so'z yuboring yoki tasodifiy oyat uchun /random buyrug'ini bering."
	msgNotAdmin      = "⚠️ Siz admin emassiz!"
	msgNoForward     = "⚠️ Xabar forward qilinmagan."
	msgBadCaption    = "⚠️ Izoh formati: Sura nomi|Oyat raqami"
	msgIndexed       = "✅ Oyat saqlandi: %s"
	msgAlreadySaved  = "ℹ️ Bu oyat avval saqlangan."
	msgNoVerses      = "❌ Hozircha oyatlar mavjud emas."
	msgNotFound      = "❌ Topilmadi. Boshqa so'z bilan urinib ko'ring."
	msgQueryTooShort = "✍️ Qidirish uchun kamida 2 ta harf yuboring."
	msgSearchHeader  = "🔎 Topilgan oyatlar:"
	msgStats         = "📊 Statistika:\nOyatlar: %d\nFoydalanuvchilar: %d"
	msgInternal      = "❌ Xatolik yuz berdi. Keyinroq urinib ko'ring."
)

// tokenStats is the callback token of the statistics button; verse tokens are
// "{chat}_{message}" and can never collide with it.
const tokenStats = "stats"

// Handler is what the transport adapter dispatches events into.
type Handler interface {
	// Handle turns one inbound event into at most one reply. A non-nil error
	// reports an unexpected internal failure; the reply (when also non-nil)
	// still goes out so the user is not left hanging.
	Handle(ctx context.Context, ev Event) (*Reply, error)
}

// Dispatcher routes verse-bot events to the verse and user services.
type Dispatcher struct {
	Verses *services.VerseService
	Users  *services.UserService
	Log    zerolog.Logger
}

// Handle implements Handler for the verse bot.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) (*Reply, error) {
	switch ev.Kind {
	case KindStart:
		return d.handleStart(ctx, ev)
	case KindForwardedMessage:
		return d.handleIngest(ctx, ev)
	case KindTextMessage:
		return d.handleText(ctx, ev)
	case KindCallbackSelection:
		return d.handleSelection(ctx, ev)
	default:
		observe(ev.Kind, OutcomeError)
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, ev Event) (*Reply, error) {
	created, err := d.Users.Register(ctx, ev.Sender.ID, ev.Sender.Username, ev.Sender.FirstName, ev.Sender.LastName)
	if err != nil {
		observe(ev.Kind, OutcomeError)
		return &Reply{Text: msgInternal}, fmt.Errorf("register user %d: %w", ev.Sender.ID, err)
	}
	if created {
		d.Log.Info().Int64("user_id", ev.Sender.ID).Msg("new user registered")
	}

	observe(ev.Kind, OutcomeOK)
	return &Reply{
		Text:    msgStart,
		Buttons: [][]Button{{{Label: "📊 Statistika", Token: tokenStats}}},
	}, nil
}

func (d *Dispatcher) handleIngest(ctx context.Context, ev Event) (*Reply, error) {
	in := services.IngestInput{
		SenderID:    ev.Sender.ID,
		Caption:     ev.Caption,
		Text:        ev.Text,
		AudioFileID: ev.AudioFileID,
	}
	if ev.ForwardOrigin != nil {
		in.OriginChatID = ev.ForwardOrigin.ChatID
		in.OriginMessageID = ev.ForwardOrigin.MessageID
	}

	v, err := d.Verses.Ingest(ctx, in)
	switch {
	case err == nil:
		observe(ev.Kind, OutcomeOK)
		d.Log.Info().Str("uid", v.UID).Str("sura", v.Sura).Msg("verse indexed")
		return &Reply{Text: fmt.Sprintf(msgIndexed, v.UID)}, nil
	case errors.Is(err, services.ErrNotAdmin):
		observe(ev.Kind, OutcomeRejected)
		return &Reply{Text: msgNotAdmin}, nil
	case errors.Is(err, services.ErrNoForwardOrigin):
		observe(ev.Kind, OutcomeRejected)
		return &Reply{Text: msgNoForward}, nil
	case errors.Is(err, services.ErrBadCaption):
		observe(ev.Kind, OutcomeRejected)
		return &Reply{Text: msgBadCaption}, nil
	case errors.Is(err, services.ErrDuplicateVerse):
		observe(ev.Kind, OutcomeDuplicate)
		return &Reply{Text: msgAlreadySaved}, nil
	default:
		observe(ev.Kind, OutcomeError)
		return &Reply{Text: msgInternal}, fmt.Errorf("ingest: %w", err)
	}
}

func (d *Dispatcher) handleText(ctx context.Context, ev Event) (*Reply, error) {
	if strings.TrimSpace(ev.Text) == "/random" {
		return d.handleRandom(ctx, ev)
	}

	hits, err := d.Verses.Search(ctx, ev.Text)
	switch {
	case err == nil:
		// fall through below
	case errors.Is(err, services.ErrQueryTooShort):
		observe(ev.Kind, OutcomeRejected)
		return &Reply{Text: msgQueryTooShort}, nil
	case errors.Is(err, services.ErrNoResults):
		observe(ev.Kind, OutcomeNotFound)
		return &Reply{Text: msgNotFound}, nil
	default:
		observe(ev.Kind, OutcomeError)
		return &Reply{Text: msgInternal}, fmt.Errorf("search: %w", err)
	}

	rows := make([][]Button, 0, len(hits))
	for i := range hits {
		rows = append(rows, []Button{{Label: ResultLabel(&hits[i]), Token: hits[i].UID}})
	}
	observe(ev.Kind, OutcomeOK)
	return &Reply{Text: msgSearchHeader, Buttons: rows}, nil
}

func (d *Dispatcher) handleRandom(ctx context.Context, ev Event) (*Reply, error) {
	v, err := d.Verses.Random(ctx)
	switch {
	case err == nil:
		observe(ev.Kind, OutcomeOK)
		r := Format(v)
		return &r, nil
	case errors.Is(err, services.ErrNoVerses):
		observe(ev.Kind, OutcomeNotFound)
		return &Reply{Text: msgNoVerses}, nil
	default:
		observe(ev.Kind, OutcomeError)
		return &Reply{Text: msgInternal}, fmt.Errorf("random: %w", err)
	}
}

func (d *Dispatcher) handleSelection(ctx context.Context, ev Event) (*Reply, error) {
	if ev.SelectionToken == tokenStats {
		verses, users, err := d.Verses.Stats(ctx)
		if err != nil {
			observe(ev.Kind, OutcomeError)
			return &Reply{Text: msgInternal}, fmt.Errorf("stats: %w", err)
		}
		observe(ev.Kind, OutcomeOK)
		return &Reply{Text: fmt.Sprintf(msgStats, verses, users)}, nil
	}

	v, err := d.Verses.Get(ctx, ev.SelectionToken)
	switch {
	case err == nil:
		observe(ev.Kind, OutcomeOK)
		r := Format(v)
		return &r, nil
	case errors.Is(err, services.ErrVerseNotFound):
		observe(ev.Kind, OutcomeNotFound)
		return &Reply{Text: msgNotFound}, nil
	default:
		observe(ev.Kind, OutcomeError)
		return &Reply{Text: msgInternal}, fmt.Errorf("get %q: %w", ev.SelectionToken, err)
	}
}
