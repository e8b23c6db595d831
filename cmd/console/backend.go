package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/adventure-console/internal/config"
	"github.com/jwebster45206/adventure-console/internal/journal"
	"github.com/jwebster45206/adventure-console/internal/services"
)

// newLLMService builds the backend named by cfg.Backend.
func newLLMService(cfg *config.Config, logger *slog.Logger) (services.LLMService, error) {
	switch cfg.Backend {
	case config.BackendAnthropic:
		return services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.Model, cfg.RequestTimeout, logger), nil
	case config.BackendOpenAI:
		return services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.RequestTimeout, logger), nil
	case config.BackendOllama:
		return services.NewOllamaService(cfg.OllamaURL, cfg.Model, cfg.RequestTimeout, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", cfg.Backend)
	}
}

// newJournal connects to Redis when a URL is configured. A journal that
// cannot be reached is replaced with a no-op so play is never blocked.
func newJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) journal.Journal {
	if cfg.RedisURL == "" {
		return journal.Nop{}
	}

	rj := journal.NewRedisJournal(cfg.RedisURL, cfg.JournalTTL, logger)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rj.WaitForConnection(ctx, 3); err != nil {
		logger.Warn("Transcript journal disabled", "error", err)
		_ = rj.Close()
		return journal.Nop{}
	}
	return rj
}
