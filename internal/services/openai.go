package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/adventure-console/pkg/chat"
)

const DefaultOpenAITemperature = 0.8

// OpenAIService implements LLMService for OpenAI and OpenAI-compatible
// endpoints such as OpenRouter.
type OpenAIService struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

// Ensure OpenAIService implements LLMService interface
var _ LLMService = (*OpenAIService)(nil)

// NewOpenAIService creates a new OpenAI service. An empty baseURL uses the public API.
func NewOpenAIService(apiKey string, baseURL string, modelName string, timeout time.Duration, logger *slog.Logger) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &OpenAIService{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
		logger:    logger,
	}
}

// InitModel is a no-op; hosted models need no preparation.
func (s *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Chat generates a completion in JSON mode.
func (s *OpenAIService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.modelName,
		Messages:    reqMessages,
		Temperature: DefaultOpenAITemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Error("OpenAI chat completion failed", "model", s.modelName, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("API returned an empty completion")
	}

	s.logger.Debug("OpenAI chat completed",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start))

	return &chat.ChatResponse{
		Message: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}
