// Package router assembles the HTTP surface of the service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careline-ai/careline/internal/channels/line"
	httpmiddleware "github.com/careline-ai/careline/internal/http/middleware"
	"github.com/careline-ai/careline/internal/orchestrator"
	"github.com/careline-ai/careline/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger           *logging.Logger
	PipelineHandler  *orchestrator.Handler
	LineWebhook      *line.WebhookHandler
	MetricsHandler   http.Handler
	RateLimitPerSec  float64
	RateLimitBurst   int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Webhook signature verification is the auth layer here; no rate limit so
	// platform retries are never dropped.
	if cfg.LineWebhook != nil {
		r.Post("/webhook/line", cfg.LineWebhook.HandleInbound)
	}

	if cfg.PipelineHandler != nil {
		r.Group(func(api chi.Router) {
			if cfg.RateLimitPerSec > 0 {
				api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
			}
			api.Post("/v1/analyze", cfg.PipelineHandler.Analyze)
			api.Post("/v1/postback", cfg.PipelineHandler.Postback)
		})
	}

	return r
}
