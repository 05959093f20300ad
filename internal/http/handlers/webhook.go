package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carol444game-cell/quroni-karim/internal/http/middleware"
)

// UpdateHandler is the adapter side of the webhook: it processes one decoded
// Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update) error
}

// Webhook receives Telegram update deliveries on /webhook/:token.
type Webhook struct {
	// Token is the bot token embedded in the webhook path; requests carrying
	// anything else get a 404.
	Token string
	// Adapter processes decoded updates.
	Adapter UpdateHandler
}

// Handle validates the path token, decodes the update, and dispatches it on
// its own goroutine so slow handling (audio downloads) never stalls the
// delivery response. Telegram always gets {"status":"ok"} for a valid token;
// a non-2xx would only trigger redelivery of an update that already failed.
func (h *Webhook) Handle(c *gin.Context) {
	token := c.Param("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) != 1 {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
		return
	}

	var u tgbotapi.Update
	if err := json.NewDecoder(c.Request.Body).Decode(&u); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("undecodable webhook body")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	lg := *middleware.LoggerFrom(c)
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.Adapter.HandleUpdate(ctx, u); err != nil {
			lg.Error().Err(err).Int("update_id", u.UpdateID).Msg("webhook update failed")
		}
	}()

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
