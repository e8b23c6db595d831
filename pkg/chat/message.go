package chat

import (
	"time"

	"github.com/jwebster45206/adventure-console/pkg/state"
)

// Message is one entry in the conversation log. Messages are values and are
// never edited after they are appended.
type Message struct {
	ID        uint64    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"` // markdown for assistant messages
	Timestamp time.Time `json:"timestamp"`

	// Snapshot is the character state in effect when an assistant message was produced.
	Snapshot    *state.CharacterState `json:"state_snapshot,omitempty"`
	Suggestions []string              `json:"suggestions,omitempty"`

	// Ephemeral marks local notices that never reached the narrative service.
	Ephemeral bool `json:"ephemeral,omitempty"`
}

// MessageOption customizes a message before it is appended.
type MessageOption func(*Message)

// WithSnapshot attaches a copy of the state to the message.
func WithSnapshot(cs state.CharacterState) MessageOption {
	return func(m *Message) {
		snap := cs.Clone()
		m.Snapshot = &snap
	}
}

// WithSuggestions records the options offered alongside the message.
func WithSuggestions(s Suggestions) MessageOption {
	return func(m *Message) {
		m.Suggestions = s.Clone()
	}
}

// AsEphemeral marks the message as a local notice.
func AsEphemeral() MessageOption {
	return func(m *Message) {
		m.Ephemeral = true
	}
}

// Log is the ordered, append-only record of a session's messages.
// Log is not safe for concurrent use; the session controller serializes access.
type Log struct {
	messages []Message
	lastID   uint64
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{messages: make([]Message, 0)}
}

// Append creates a message with the next ID and adds it to the end of the log.
// IDs keep increasing across Reset so render order never depends on clock resolution.
func (l *Log) Append(role, content string, at time.Time, opts ...MessageOption) Message {
	l.lastID++
	msg := Message{
		ID:        l.lastID,
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
	for _, opt := range opts {
		opt(&msg)
	}
	l.messages = append(l.messages, msg)
	return msg
}

// Messages returns a copy of the log contents.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Len() int {
	return len(l.messages)
}

// Last returns the most recent message, if any.
func (l *Log) Last() (Message, bool) {
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Reset empties the log. Only a session start or restart may call it.
func (l *Log) Reset() {
	l.messages = make([]Message, 0)
}
