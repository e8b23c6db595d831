package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported LLM backends
const (
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendOllama    = "ollama"
)

type Config struct {
	Environment  string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevelName string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile      string `envconfig:"LOG_FILE" default:"adventure-console.log"`

	Backend         string `envconfig:"LLM_BACKEND" default:"anthropic"`
	Model           string `envconfig:"LLM_MODEL"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL"`
	OllamaURL       string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"90s"`
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT" default:"20"`
	Language       string        `envconfig:"STORY_LANGUAGE" default:"English"`

	RedisURL   string        `envconfig:"REDIS_URL"`
	JournalTTL time.Duration `envconfig:"JOURNAL_TTL" default:"24h"`

	LogLevel slog.Level `ignored:"true"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Backend)
	}
	return &cfg, nil
}

// DefaultModel returns the model used when LLM_MODEL is not set.
func DefaultModel(backend string) string {
	switch backend {
	case BackendOpenAI:
		return "gpt-4o-mini"
	case BackendOllama:
		return "llama3.1"
	default:
		return "claude-3-5-haiku-latest"
	}
}

// Validate checks that the selected backend can be constructed.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the %s backend", c.Backend)
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the %s backend", c.Backend)
		}
	case BackendOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("unknown LLM_BACKEND %q (want %s, %s or %s)", c.Backend, BackendAnthropic, BackendOpenAI, BackendOllama)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative, got %d", c.HistoryLimit)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
