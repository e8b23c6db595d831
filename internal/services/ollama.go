package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/jwebster45206/adventure-console/pkg/chat"
)

// OllamaService implements the LLMService interface for a local Ollama server
type OllamaService struct {
	client     *api.Client
	modelName  string
	logger     *slog.Logger
	retryDelay time.Duration
}

// Ensure OllamaService implements LLMService interface
var _ LLMService = (*OllamaService)(nil)

// NewOllamaService creates a new Ollama service instance
func NewOllamaService(baseURL string, modelName string, timeout time.Duration, logger *slog.Logger) (*OllamaService, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}

	return &OllamaService{
		client:     api.NewClient(base, &http.Client{Timeout: timeout}),
		modelName:  modelName,
		logger:     logger,
		retryDelay: 2 * time.Second,
	}, nil
}

// InitModel waits for Ollama and pulls the model if it is not available yet
func (s *OllamaService) InitModel(ctx context.Context, modelName string) error {
	s.logger.Info("Initializing LLM model", "model", modelName)

	if err := s.waitForOllamaReady(ctx); err != nil {
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelReady(ctx, modelName)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}
	if ready {
		s.logger.Info("Model already available", "model", modelName)
		return nil
	}

	s.logger.Info("Model not found, pulling it", "model", modelName)
	err = s.client.Pull(ctx, &api.PullRequest{Model: modelName}, func(p api.ProgressResponse) error {
		s.logger.Debug("Pulling model", "model", modelName, "status", p.Status, "completed", p.Completed, "total", p.Total)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	s.logger.Info("Model pulled successfully", "model", modelName)
	return nil
}

// Chat generates a completion in JSON format using the Ollama API (non-streaming)
func (s *OllamaService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	reqMessages := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		reqMessages = append(reqMessages, api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    s.modelName,
		Messages: reqMessages,
		Stream:   &stream,
		Format:   json.RawMessage(`"json"`),
	}

	s.logger.Debug("Making Ollama chat request",
		"model", s.modelName,
		"message_count", len(messages))

	var content strings.Builder
	var model string
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		model = resp.Model
		return nil
	})
	if err != nil {
		s.logger.Error("Ollama chat request failed", "model", s.modelName, "error", err)
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	if content.Len() == 0 {
		return nil, fmt.Errorf("ollama returned an empty completion")
	}

	return &chat.ChatResponse{
		Message: content.String(),
		Model:   model,
	}, nil
}

// isModelReady checks if the specified model is available locally
func (s *OllamaService) isModelReady(ctx context.Context, modelName string) (bool, error) {
	list, err := s.client.List(ctx)
	if err != nil {
		return false, err
	}

	for _, model := range list.Models {
		if model.Name == modelName || strings.TrimSuffix(model.Name, ":latest") == modelName {
			return true, nil
		}
	}
	return false, nil
}

// waitForOllamaReady waits for Ollama service to be ready with retries
func (s *OllamaService) waitForOllamaReady(ctx context.Context) error {
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		err := s.client.Heartbeat(ctx)
		if err == nil {
			s.logger.Info("Ollama service is ready")
			return nil
		}
		s.logger.Debug("Ollama not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for ollama: %w", ctx.Err())
		case <-time.After(s.retryDelay):
		}
	}

	return fmt.Errorf("ollama service did not become ready after %d attempts", maxRetries)
}
