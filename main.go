// Command quroni-karim runs the Telegram bot server in one of two modes:
// the verse index bot (default) or the YouTube music bot. Both modes share
// the transport adapter and the HTTP surface (/health, /metrics, and the
// webhook route when PUBLIC_HOST is set); without a public host the bot
// falls back to long polling.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/carol444game-cell/quroni-karim/internal/bot"
	"github.com/carol444game-cell/quroni-karim/internal/config"
	"github.com/carol444game-cell/quroni-karim/internal/domain"
	httpapi "github.com/carol444game-cell/quroni-karim/internal/http"
	"github.com/carol444game-cell/quroni-karim/internal/observability"
	"github.com/carol444game-cell/quroni-karim/internal/repo"
	"github.com/carol444game-cell/quroni-karim/internal/services"
	"github.com/carol444game-cell/quroni-karim/internal/sysutil"
	"github.com/carol444game-cell/quroni-karim/internal/telegram"
	"github.com/carol444game-cell/quroni-karim/internal/youtube"
)

const version = "1.0.0"

// verseRepoShim adapts the repo free functions to the services.VerseRepo
// interface. Keeps services decoupled from the concrete repo package while
// reusing its functions directly.
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

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.InitLogging(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(c)
	}()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth failed")
	}
	log.Info().Str("bot", api.Self.UserName).Str("mode", cfg.Mode).Msg("bot authorized")

	adapter := &telegram.Adapter{
		API:     api,
		AdminID: cfg.AdminID,
		Limiter: telegram.NewSenderLimiter(cfg.RateRPS, cfg.RateBurst),
		Log:     log.Logger,
	}

	var db *gorm.DB
	switch cfg.Mode {
	case config.ModeMusic:
		adapter.Handler = &bot.MusicDispatcher{
			Music: &services.MusicService{
				Provider:    youtube.NewClient(cfg.YtDlpPath),
				DownloadDir: cfg.DownloadDir,
				Timeout:     cfg.FetchTimeout,
			},
			Log: log.Logger,
		}
	default:
		db, err = repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}

		verses := services.NewVerseService(db, verseRepoShim{}, cfg.AdminID)
		verses.SearchLimit = cfg.SearchLimit
		adapter.DB = db
		adapter.Handler = &bot.Dispatcher{
			Verses: verses,
			Users:  &services.UserService{DB: db},
			Log:    log.Logger,
		}

		go pruneLoop(ctx, db, cfg.UpdateTTL)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, cfg, adapter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.WebhookMode() {
		if err := adapter.SetWebhook(cfg.WebhookURL()); err != nil {
			log.Fatal().Err(err).Msg("webhook registration failed")
		}
		defer func() {
			if err := adapter.DeleteWebhook(); err != nil {
				log.Warn().Err(err).Msg("webhook deregistration failed")
			}
		}()
	} else {
		// Stale registrations block getUpdates; clear before polling.
		if err := adapter.DeleteWebhook(); err != nil {
			log.Warn().Err(err).Msg("webhook cleanup failed")
		}
		go func() {
			if err := adapter.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("fatal runtime error")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	log.Info().Msg("bye")
}

// pruneLoop deletes processed-update dedup rows older than ttl once an hour.
func pruneLoop(ctx context.Context, db *gorm.DB, ttl time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.PruneProcessedUpdates(ctx, db, time.Now().UTC().Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("prune processed updates failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("pruned processed updates")
			}
		}
	}
}
