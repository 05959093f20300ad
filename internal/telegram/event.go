// Package telegram adapts the Telegram Bot API to the transport-independent
// core in internal/bot. The adapter converts inbound updates into events,
// dispatches them, and ships the resulting replies back through the API. It
// also owns transport concerns the core never sees: per-sender rate limiting,
// redelivery deduplication, webhook registration, and the long-polling loop.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carol444game-cell/quroni-karim/internal/bot"
)

// FromUpdate converts one Telegram update into a core event. The second
// return is false for update shapes the bot does not handle (edits, channel
// posts, inline queries, messages without a sender).
func FromUpdate(u tgbotapi.Update, adminID int64) (bot.Event, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil || cq.Data == "" {
			return bot.Event{}, false
		}
		ev := bot.Event{
			Kind:           bot.KindCallbackSelection,
			UpdateID:       int64(u.UpdateID),
			Sender:         fromUser(cq.From),
			SelectionToken: cq.Data,
			CallbackID:     cq.ID,
		}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
		}
		ev.IsAdmin = ev.Sender.ID == adminID
		return ev, true
	}

	msg := u.Message
	if msg == nil || msg.From == nil {
		return bot.Event{}, false
	}

	ev := bot.Event{
		UpdateID: int64(u.UpdateID),
		ChatID:   msg.Chat.ID,
		Sender:   fromUser(msg.From),
		Text:     msg.Text,
		Caption:  msg.Caption,
	}
	ev.IsAdmin = ev.Sender.ID == adminID

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		ev.Kind = bot.KindStart
	case msg.ForwardDate != 0 || msg.Audio != nil || msg.Voice != nil || msg.Caption != "":
		// Anything shaped like an ingest attempt. Origin may still be nil
		// (a forward from a user, or no forward at all); the service rejects
		// those with the dedicated message.
		ev.Kind = bot.KindForwardedMessage
		ev.ForwardOrigin = forwardOrigin(msg)
		if msg.Audio != nil {
			ev.AudioFileID = msg.Audio.FileID
		} else if msg.Voice != nil {
			ev.AudioFileID = msg.Voice.FileID
		}
	case msg.Text != "":
		ev.Kind = bot.KindTextMessage
	default:
		return bot.Event{}, false
	}

	return ev, true
}

// forwardOrigin extracts the forwarded-from chat and message ids. Only chat
// and channel forwards carry a stable origin message id; forwards from users
// do not, and yield nil.
func forwardOrigin(msg *tgbotapi.Message) *bot.Origin {
	if msg.ForwardFromChat != nil && msg.ForwardFromMessageID != 0 {
		return &bot.Origin{
			ChatID:    msg.ForwardFromChat.ID,
			MessageID: int64(msg.ForwardFromMessageID),
		}
	}
	return nil
}

func fromUser(u *tgbotapi.User) bot.Sender {
	return bot.Sender{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
