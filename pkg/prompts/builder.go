package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

// DefaultHistoryLimit is the number of prior messages replayed to the model.
const DefaultHistoryLimit = 20

// Builder constructs chat messages for the game master model using a fluent interface.
type Builder struct {
	cs           *state.CharacterState
	history      []chat.ChatMessage
	action       string
	language     string
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithState sets the current character state. A nil state is omitted from the prompt.
func (b *Builder) WithState(cs *state.CharacterState) *Builder {
	b.cs = cs
	return b
}

// WithHistory sets the prior conversation with the model.
func (b *Builder) WithHistory(history []chat.ChatMessage) *Builder {
	b.history = history
	return b
}

// WithAction sets the player's action for this turn.
func (b *Builder) WithAction(action string) *Builder {
	b.action = action
	return b
}

// WithLanguage sets the language the story should be told in.
func (b *Builder) WithLanguage(language string) *Builder {
	b.language = language
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if strings.TrimSpace(b.action) == "" {
		return nil, fmt.Errorf("action is required")
	}

	b.messages = make([]chat.ChatMessage, 0, len(b.history)+4)

	// 1. System prompt
	b.addSystemPrompt()

	// 2. Current state
	if err := b.addStatePrompt(); err != nil {
		return nil, fmt.Errorf("error building state prompt: %w", err)
	}

	// 3. Windowed chat history
	b.addHistory()

	// 4. Player action
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: b.action,
	})

	// 5. Format reminder
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: ResponseFormatReminder,
	})

	return b.messages, nil
}

func (b *Builder) addSystemPrompt() {
	languageDirective := ""
	if b.language != "" {
		languageDirective = fmt.Sprintf(LanguagePrompt, b.language)
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(GameMasterPrompt, languageDirective),
	})
}

func (b *Builder) addStatePrompt() error {
	if b.cs == nil {
		return nil
	}
	data, err := json.Marshal(b.cs)
	if err != nil {
		return err
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(StatePrompt, data),
	})
	return nil
}

// addHistory adds windowed chat history to the message array.
func (b *Builder) addHistory() {
	if len(b.history) == 0 || b.historyLimit <= 0 {
		return
	}

	if len(b.history) <= b.historyLimit {
		b.messages = append(b.messages, b.history...)
	} else {
		b.messages = append(b.messages, b.history[len(b.history)-b.historyLimit:]...)
	}
}
