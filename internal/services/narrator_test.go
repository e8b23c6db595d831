package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/narrative"
	"github.com/jwebster45206/adventure-console/pkg/prompts"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

const openingCompletion = `{"narrative":"You wake in a ditch.","state":{"phase":"gender_selection","name":"Traveler","hp":100,"maxHp":100,"level":1},"suggestedActions":["Male","Female"]}`

const classCompletion = `{"narrative":"Choose your path.","state":{"phase":"class_selection","gender":"Female","hp":100,"maxHp":100,"level":1},"suggestedActions":["Warrior","Mage","Rogue"]}`

func newTestNarrator(llm LLMService, opts ...NarratorOption) *Narrator {
	return NewNarrator(llm, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func TestNarrator_StartNewGame(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(openingCompletion)
	n := newTestNarrator(llm, WithLanguage("English"))

	resp, err := n.StartNewGame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "You wake in a ditch.", resp.Narrative)
	assert.Equal(t, state.PhaseGenderSelection, resp.State.Phase)
	assert.Equal(t, []string{"Male", "Female"}, resp.SuggestedActions)

	_, calls := llm.GetCalls()
	require.Len(t, calls, 1)
	msgs := calls[0].Messages
	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "English")

	var sawOpening bool
	for _, m := range msgs {
		if m.Role == chat.ChatRoleUser && m.Content == prompts.OpeningAction {
			sawOpening = true
		}
	}
	assert.True(t, sawOpening, "opening action should be sent")

	history := n.History()
	require.Len(t, history, 2)
	assert.Equal(t, prompts.OpeningAction, history[0].Content)
	assert.Equal(t, openingCompletion, history[1].Content)
}

func TestNarrator_SendActionReplaysHistoryAndState(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(openingCompletion)
	n := newTestNarrator(llm)

	_, err := n.StartNewGame(context.Background())
	require.NoError(t, err)

	llm.SetChatResponse(classCompletion)
	resp, err := n.SendAction(context.Background(), "Female")
	require.NoError(t, err)
	assert.Equal(t, state.PhaseClassSelection, resp.State.Phase)

	_, calls := llm.GetCalls()
	require.Len(t, calls, 2)
	msgs := calls[1].Messages

	var joined []string
	for _, m := range msgs {
		joined = append(joined, m.Content)
	}
	all := strings.Join(joined, "\n")
	assert.Contains(t, all, `"phase":"gender_selection"`, "previous state should be in the prompt")
	assert.Contains(t, all, openingCompletion, "previous completion should be replayed")
	assert.Contains(t, all, "Female")

	assert.Len(t, n.History(), 4)
}

func TestNarrator_StartNewGameClearsHistory(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(openingCompletion)
	n := newTestNarrator(llm)

	_, err := n.StartNewGame(context.Background())
	require.NoError(t, err)
	_, err = n.SendAction(context.Background(), "Male")
	require.NoError(t, err)
	require.Len(t, n.History(), 4)

	_, err = n.StartNewGame(context.Background())
	require.NoError(t, err)
	assert.Len(t, n.History(), 2)
}

func TestNarrator_Errors(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		llm := NewMockLLMAPI()
		llm.SetChatError(errors.New("connection refused"))
		n := newTestNarrator(llm)

		_, err := n.StartNewGame(context.Background())
		assert.Error(t, err)
		assert.Empty(t, n.History())
	})

	t.Run("malformed completion", func(t *testing.T) {
		llm := NewMockLLMAPI()
		llm.SetChatResponse("I am not JSON")
		n := newTestNarrator(llm)

		_, err := n.StartNewGame(context.Background())
		assert.ErrorIs(t, err, narrative.ErrMalformedResponse)
		assert.Empty(t, n.History())
	})

	t.Run("missing state", func(t *testing.T) {
		llm := NewMockLLMAPI()
		llm.SetChatResponse(`{"narrative":"hi","suggestedActions":[]}`)
		n := newTestNarrator(llm)

		_, err := n.SendAction(context.Background(), "look")
		assert.ErrorIs(t, err, narrative.ErrMalformedResponse)
	})
}

func TestNarrator_StaleTurnDoesNotWriteNewGameHistory(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(openingCompletion)
	n := newTestNarrator(llm)

	_, err := n.StartNewGame(context.Background())
	require.NoError(t, err)

	release := make(chan struct{})
	entered := make(chan struct{})
	llm.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		close(entered)
		<-release
		return &chat.ChatResponse{Message: classCompletion}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := n.SendAction(context.Background(), "Female")
		done <- err
	}()
	<-entered

	// Restart while the action is in flight
	n.mu.Lock()
	n.epoch++
	n.history = make([]chat.ChatMessage, 0)
	n.current = nil
	n.mu.Unlock()

	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, n.History(), "stale turn must not append to the new game's history")
}

func TestNarrator_HistoryLimit(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(openingCompletion)
	n := newTestNarrator(llm, WithHistoryLimit(2))

	_, err := n.StartNewGame(context.Background())
	require.NoError(t, err)
	for _, action := range []string{"one", "two", "three"} {
		_, err := n.SendAction(context.Background(), action)
		require.NoError(t, err)
	}

	_, calls := llm.GetCalls()
	last := calls[len(calls)-1].Messages
	var replayed int
	for _, m := range last {
		if m.Role == chat.ChatRoleAgent {
			replayed++
		}
	}
	assert.Equal(t, 1, replayed, "only the windowed history should be replayed")
}
