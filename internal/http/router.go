// Package httpapi wires the HTTP transport (Gin) to the webhook handler and
// the operational endpoints. It centralizes the cross-cutting middleware:
// tracing, correlation IDs, structured logging, panic recovery, body limits,
// and Prometheus metrics.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/carol444game-cell/quroni-karim/internal/config"
	"github.com/carol444game-cell/quroni-karim/internal/http/handlers"
	"github.com/carol444game-cell/quroni-karim/internal/http/middleware"
)

// RegisterRoutes attaches all middleware and endpoints to the given engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs (webhook token never logged)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//
// Routes: POST {webhook path}, GET /health, GET /metrics.
func RegisterRoutes(r *gin.Engine, cfg config.Config, adapter handlers.UpdateHandler) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Telegram updates are small; 1 MiB is generous headroom.
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	wh := &handlers.Webhook{Token: cfg.BotToken, Adapter: adapter}
	r.POST("/webhook/:token", wh.Handle)
}

// limitBody caps the request body size using http.MaxBytesReader; oversized
// bodies error on the first downstream read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
