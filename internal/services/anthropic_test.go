package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicService(t *testing.T) {
	apiKey := "test-api-key"
	modelName := "claude-3-5-haiku-latest"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAnthropicService(apiKey, modelName, time.Minute, log)

	if service.apiKey != apiKey {
		t.Errorf("Expected API key %s, got %s", apiKey, service.apiKey)
	}

	if service.modelName != modelName {
		t.Errorf("Expected model name %s, got %s", modelName, service.modelName)
	}

	if service.httpClient == nil || service.httpClient.Timeout != time.Minute {
		t.Error("Expected HTTP client to be initialized with the configured timeout")
	}

	if err := service.InitModel(context.Background(), modelName); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestAnthropicService_ExtractSystemMessage(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-3-5-haiku-latest", time.Minute, log)

	tests := []struct {
		name                   string
		messages               []chat.ChatMessage
		expectedSystem         string
		expectedNonSystemCount int
	}{
		{
			name: "single system message",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are the Game Master."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleAgent, Content: "Hi there!"},
			},
			expectedSystem:         "You are the Game Master.",
			expectedNonSystemCount: 2,
		},
		{
			name: "multiple system messages",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are the Game Master."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleSystem, Content: "Reply with JSON."},
			},
			expectedSystem:         "You are the Game Master.\n\nReply with JSON.",
			expectedNonSystemCount: 1,
		},
		{
			name: "no system messages",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleAgent, Content: "Hi there!"},
			},
			expectedSystem:         "",
			expectedNonSystemCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			systemPrompt, nonSystemMessages := service.splitChatMessages(tt.messages)

			if systemPrompt != tt.expectedSystem {
				t.Errorf("Expected system prompt '%s', got '%s'", tt.expectedSystem, systemPrompt)
			}

			if len(nonSystemMessages) != tt.expectedNonSystemCount {
				t.Errorf("Expected %d non-system messages, got %d", tt.expectedNonSystemCount, len(nonSystemMessages))
			}

			for _, msg := range nonSystemMessages {
				if msg.Role == chat.ChatRoleSystem {
					t.Error("Found system message in non-system messages")
				}
			}
		})
	}
}

func TestAnthropicService_Chat(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("successful completion", func(t *testing.T) {
		var got AnthropicChatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			_, _ = w.Write([]byte(`{
				"id": "msg_01",
				"type": "message",
				"role": "assistant",
				"model": "claude-3-5-haiku-latest",
				"content": [{"type": "text", "text": "{\"narrative\":"}, {"type": "text", "text": "\"ok\"}"}],
				"usage": {"input_tokens": 10, "output_tokens": 5}
			}`))
		}))
		defer server.Close()

		service := NewAnthropicService("test-key", "claude-3-5-haiku-latest", time.Minute, log)
		service.baseURL = server.URL

		resp, err := service.Chat(context.Background(), []chat.ChatMessage{
			{Role: chat.ChatRoleSystem, Content: "rules"},
			{Role: chat.ChatRoleUser, Content: "look"},
		})
		require.NoError(t, err)

		assert.Equal(t, `{"narrative":"ok"}`, resp.Message)
		assert.Equal(t, "claude-3-5-haiku-latest", resp.Model)
		assert.Equal(t, "rules", got.System)
		assert.Len(t, got.Messages, 1)
		assert.Equal(t, DefaultAnthropicMaxTokens, got.MaxTokens)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
		}))
		defer server.Close()

		service := NewAnthropicService("test-key", "m", time.Minute, log)
		service.baseURL = server.URL

		_, err := service.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "look"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"msg_02","content":[]}`))
		}))
		defer server.Close()

		service := NewAnthropicService("test-key", "m", time.Minute, log)
		service.baseURL = server.URL

		_, err := service.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "look"}})
		assert.Error(t, err)
	})
}

func TestAnthropicChatResponseStructure(t *testing.T) {
	responseJSON := `{
		"id": "msg_01ABC123",
		"type": "message",
		"role": "assistant",
		"content": [
			{
				"type": "text",
				"text": "Hello! How can I help you today?"
			}
		],
		"model": "claude-3-5-haiku-latest",
		"stop_reason": "end_turn",
		"stop_sequence": null,
		"usage": {
			"input_tokens": 10,
			"output_tokens": 20
		}
	}`

	var resp AnthropicChatResponse
	if err := json.Unmarshal([]byte(responseJSON), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(resp.Content) != 1 || resp.Content[0].Text != "Hello! How can I help you today?" {
		t.Errorf("Unexpected content: %+v", resp.Content)
	}
	if resp.Usage.OutputTokens != 20 {
		t.Errorf("Expected 20 output tokens, got %d", resp.Usage.OutputTokens)
	}
}
