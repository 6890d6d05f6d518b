package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careline-ai/careline/internal/api/router"
	"github.com/careline-ai/careline/internal/cache"
	"github.com/careline-ai/careline/internal/channels/line"
	appconfig "github.com/careline-ai/careline/internal/config"
	"github.com/careline-ai/careline/internal/lexicon"
	"github.com/careline-ai/careline/internal/llm"
	"github.com/careline-ai/careline/internal/observability/metrics"
	"github.com/careline-ai/careline/internal/orchestrator"
	"github.com/careline-ai/careline/internal/session"
	"github.com/careline-ai/careline/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting careline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	reg := loadLexicon(cfg, logger)
	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	orch := orchestrator.New(orchestrator.Config{
		Registry:   reg,
		LLM:        buildLLM(cfg, logger),
		Cache:      buildCache(cfg, logger),
		CacheTTL:   cfg.ReplyCacheTTL,
		Sessions:   session.NewStore(cfg.SessionCap, cfg.SessionTTL),
		Metrics:    pipelineMetrics,
		Logger:     logger,
		LLMTimeout: cfg.LLMTimeout,
	})

	lineClient := line.NewClient(cfg.LineChannelToken)
	lineWebhook := line.NewWebhookHandler(cfg.LineChannelSecret, func(msg line.ParsedInbound) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+5*time.Second)
		defer cancel()

		var resp orchestrator.Response
		if msg.IsPostback {
			resp = orch.HandlePostback(ctx, msg.UserID, msg.PostbackPayload)
		} else {
			resp = orch.Handle(ctx, msg.UserID, msg.Text)
		}

		var err error
		if resp.Card != nil {
			err = lineClient.ReplyFlex(ctx, msg.ReplyToken, *resp.Card)
		} else {
			err = lineClient.ReplyText(ctx, msg.ReplyToken, resp.Text)
		}
		if err != nil {
			logger.Error("failed to deliver reply", "user_id", msg.UserID, "error", err)
		}
	})

	r := router.New(&router.Config{
		Logger:          logger,
		PipelineHandler: orchestrator.NewHandler(orch, logger),
		LineWebhook:     lineWebhook,
		MetricsHandler:  promhttp.Handler(),
		RateLimitPerSec: cfg.RateLimitPerSecond,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// loadLexicon is fatal on a broken override: serving the embedded tables
// when the operator asked for different clinical content would go unnoticed.
func loadLexicon(cfg *appconfig.Config, logger *logging.Logger) *lexicon.Registry {
	if cfg.LexiconPath == "" {
		return lexicon.Default()
	}
	reg, err := lexicon.LoadFile(cfg.LexiconPath)
	if err != nil {
		logger.Error("failed to load lexicon override", "path", cfg.LexiconPath, "error", err)
		os.Exit(1)
	}
	logger.Info("lexicon override loaded", "path", cfg.LexiconPath)
	return reg
}

// buildLLM assembles the completion backend. With both keys present the
// OpenAI client is primary and Gemini the fallback; with neither the
// pipeline runs keyword-only.
func buildLLM(cfg *appconfig.Config, logger *logging.Logger) llm.Client {
	var clients []llm.Client

	if cfg.OpenAIAPIKey != "" {
		c, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error("failed to build OpenAI client", "error", err)
		} else {
			clients = append(clients, c)
		}
	}
	if cfg.GeminiAPIKey != "" {
		c, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to build Gemini client", "error", err)
		} else {
			clients = append(clients, c)
		}
	}

	switch len(clients) {
	case 0:
		logger.Info("no LLM configured, running keyword-only analysis")
		return nil
	case 1:
		return clients[0]
	default:
		return llm.NewFallbackClient(clients[0], clients[1], logger)
	}
}

// buildCache dials Redis when configured and falls back to a no-op cache
// when the dial fails. Caching is an optimization, never a dependency.
func buildCache(cfg *appconfig.Config, logger *logging.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.Noop{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis unreachable, reply cache disabled", "addr", cfg.RedisAddr, "error", err)
		return cache.Noop{}
	}

	logger.Info("reply cache enabled", "addr", cfg.RedisAddr)
	return cache.NewRedisCache(client, logger)
}
