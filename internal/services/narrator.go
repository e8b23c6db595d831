package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/narrative"
	"github.com/jwebster45206/adventure-console/pkg/prompts"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

// Narrator implements narrative.Service on top of a stateless LLM backend.
// It owns the conversation the model sees: the last accepted state and
// the round-tripped history of actions and raw completions.
type Narrator struct {
	llm          LLMService
	logger       *slog.Logger
	language     string
	historyLimit int

	mu      sync.Mutex
	epoch   uint64
	current *state.CharacterState
	history []chat.ChatMessage
}

// Ensure Narrator implements narrative.Service interface
var _ narrative.Service = (*Narrator)(nil)

// NarratorOption configures a Narrator.
type NarratorOption func(*Narrator)

// WithLanguage sets the language the story is told in.
func WithLanguage(language string) NarratorOption {
	return func(n *Narrator) {
		n.language = language
	}
}

// WithHistoryLimit sets how many prior messages are replayed to the model.
func WithHistoryLimit(limit int) NarratorOption {
	return func(n *Narrator) {
		n.historyLimit = limit
	}
}

// NewNarrator creates a narrator backed by llm.
func NewNarrator(llm LLMService, logger *slog.Logger, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		llm:          llm,
		logger:       logger,
		historyLimit: prompts.DefaultHistoryLimit,
		history:      make([]chat.ChatMessage, 0),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// StartNewGame discards the previous conversation and asks the model for an opening scene.
func (n *Narrator) StartNewGame(ctx context.Context) (*narrative.Response, error) {
	n.mu.Lock()
	n.epoch++
	epoch := n.epoch
	n.current = nil
	n.history = make([]chat.ChatMessage, 0)
	n.mu.Unlock()

	initial := state.Default()
	return n.turn(ctx, epoch, &initial, nil, prompts.OpeningAction)
}

// SendAction advances the story with the player's action.
func (n *Narrator) SendAction(ctx context.Context, action string) (*narrative.Response, error) {
	n.mu.Lock()
	epoch := n.epoch
	var current *state.CharacterState
	if n.current != nil {
		cs := n.current.Clone()
		current = &cs
	}
	history := make([]chat.ChatMessage, len(n.history))
	copy(history, n.history)
	n.mu.Unlock()

	return n.turn(ctx, epoch, current, history, action)
}

// History returns a copy of the conversation replayed to the model.
func (n *Narrator) History() []chat.ChatMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	history := make([]chat.ChatMessage, len(n.history))
	copy(history, n.history)
	return history
}

func (n *Narrator) turn(ctx context.Context, epoch uint64, cs *state.CharacterState, history []chat.ChatMessage, action string) (*narrative.Response, error) {
	messages, err := prompts.New().
		WithState(cs).
		WithHistory(history).
		WithAction(action).
		WithLanguage(n.language).
		WithHistoryLimit(n.historyLimit).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	start := time.Now()
	completion, err := n.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to get narrative: %w", err)
	}

	resp, err := narrative.Parse(completion.Message)
	if err != nil {
		n.logger.Warn("Discarding malformed completion",
			"error", err,
			"model", completion.Model,
			"length", len(completion.Message))
		return nil, err
	}

	n.logger.Debug("Narrative turn completed",
		"phase", resp.State.Phase,
		"suggestions", len(resp.SuggestedActions),
		"duration", time.Since(start))

	n.mu.Lock()
	defer n.mu.Unlock()
	if epoch != n.epoch {
		// A new game started while this turn was in flight.
		return resp, nil
	}
	accepted := resp.State.Clone()
	n.current = &accepted
	n.history = append(n.history,
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: action},
		chat.ChatMessage{Role: chat.ChatRoleAgent, Content: completion.Message},
	)
	return resp, nil
}
