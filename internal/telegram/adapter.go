package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/bot"
	"github.com/carol444game-cell/quroni-karim/internal/repo"
)

// API is the slice of the Bot API client the adapter needs. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type API interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Adapter connects the Bot API to a core handler.
type Adapter struct {
	// API is the Telegram client.
	API API
	// Handler receives converted events.
	Handler bot.Handler
	// DB enables redelivery deduplication when non-nil. Webhook deployments
	// want it; a pure polling music bot can leave it nil.
	DB *gorm.DB
	// AdminID marks events from the configured admin.
	AdminID int64
	// Limiter throttles per sender; nil disables throttling.
	Limiter *SenderLimiter
	Log     zerolog.Logger
}

// HandleUpdate processes one inbound update end to end: convert, throttle,
// deduplicate, dispatch, reply. It never returns an error for user-caused
// conditions; only transport and handler failures propagate.
func (a *Adapter) HandleUpdate(ctx context.Context, u tgbotapi.Update) error {
	ev, ok := FromUpdate(u, a.AdminID)
	if !ok {
		updatesReceived.WithLabelValues(dispIgnored).Inc()
		return nil
	}

	if !a.Limiter.Allow(ev.Sender.ID) {
		updatesReceived.WithLabelValues(dispRateLimited).Inc()
		a.Log.Debug().Int64("sender_id", ev.Sender.ID).Msg("update dropped by rate limit")
		return nil
	}

	if a.DB != nil && ev.UpdateID != 0 {
		fresh, err := repo.MarkUpdateProcessed(ctx, a.DB, ev.UpdateID)
		if err != nil {
			// Dedup is best effort; losing it degrades to at-least-once.
			a.Log.Warn().Err(err).Int64("update_id", ev.UpdateID).Msg("update dedup unavailable")
		} else if !fresh {
			updatesReceived.WithLabelValues(dispDuplicate).Inc()
			a.Log.Debug().Int64("update_id", ev.UpdateID).Msg("duplicate update skipped")
			return nil
		}
	}

	updatesReceived.WithLabelValues(dispDispatched).Inc()

	reply, handleErr := a.Handler.Handle(ctx, ev)
	defer reply.Close()

	if ev.CallbackID != "" {
		if _, err := a.API.Request(tgbotapi.NewCallback(ev.CallbackID, "")); err != nil {
			sendFailures.Inc()
			a.Log.Warn().Err(err).Msg("answer callback failed")
		}
	}

	if reply != nil && ev.ChatID != 0 {
		if err := a.send(ev.ChatID, reply); err != nil {
			sendFailures.Inc()
			a.Log.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("send reply failed")
			if handleErr == nil {
				return err
			}
		}
	}
	return handleErr
}

func (a *Adapter) send(chatID int64, r *bot.Reply) error {
	if r.HasAudio() {
		var file tgbotapi.RequestFileData
		if r.AudioFileID != "" {
			file = tgbotapi.FileID(r.AudioFileID)
		} else {
			file = tgbotapi.FilePath(r.AudioPath)
		}
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Caption = r.Text
		audio.Performer = r.Performer
		if len(r.Buttons) > 0 {
			audio.ReplyMarkup = keyboard(r.Buttons)
		}
		_, err := a.API.Send(audio)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	if len(r.Buttons) > 0 {
		msg.ReplyMarkup = keyboard(r.Buttons)
	}
	_, err := a.API.Send(msg)
	return err
}

func keyboard(rows [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token))
		}
		out = append(out, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

// Poll consumes updates over long polling until ctx is cancelled. Handler
// failures are logged and the loop keeps running.
func (a *Adapter) Poll(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := a.API.GetUpdatesChan(cfg)
	a.Log.Info().Msg("long polling started")

	for {
		select {
		case <-ctx.Done():
			a.API.StopReceivingUpdates()
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := a.HandleUpdate(ctx, u); err != nil {
				a.Log.Error().Err(err).Int("update_id", u.UpdateID).Msg("update handling failed")
			}
		}
	}
}

// SetWebhook registers url with Telegram so updates arrive over HTTPS.
func (a *Adapter) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := a.API.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	a.Log.Info().Str("url", url).Msg("webhook registered")
	return nil
}

// DeleteWebhook removes the registration, switching the bot back to polling
// eligibility. Pending updates are kept.
func (a *Adapter) DeleteWebhook() error {
	if _, err := a.API.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}
