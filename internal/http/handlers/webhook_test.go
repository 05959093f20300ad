package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingAdapter struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
}

func (a *recordingAdapter) HandleUpdate(ctx context.Context, u tgbotapi.Update) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updates = append(a.updates, u)
	return nil
}

func (a *recordingAdapter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.updates)
}

func newWebhookRouter(a UpdateHandler) *gin.Engine {
	r := gin.New()
	h := &Webhook{Token: "123:SECRET", Adapter: a}
	r.POST("/webhook/:token", h.Handle)
	return r
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	a := &recordingAdapter{}
	r := newWebhookRouter(a)

	body := `{"update_id":7,"message":{"message_id":1,"chat":{"id":5},"from":{"id":5},"text":"salom"}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/123:SECRET", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("body = %q", w.Body.String())
	}

	deadline := time.After(2 * time.Second)
	for a.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("update never reached adapter")
		case <-time.After(5 * time.Millisecond):
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.updates[0].UpdateID != 7 {
		t.Fatalf("update_id = %d", a.updates[0].UpdateID)
	}
}

func TestWebhook_RejectsWrongToken(t *testing.T) {
	a := &recordingAdapter{}
	r := newWebhookRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/guess", strings.NewReader(`{}`)))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if a.count() != 0 {
		t.Fatalf("adapter saw %d updates for a bad token", a.count())
	}
}

func TestWebhook_BadBodyStillOK(t *testing.T) {
	a := &recordingAdapter{}
	r := newWebhookRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/123:SECRET", strings.NewReader("{not json")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if a.count() != 0 {
		t.Fatalf("adapter saw %d updates from a bad body", a.count())
	}
}
