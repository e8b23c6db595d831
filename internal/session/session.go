// Package session owns the lifecycle of one adventure: the conversation log,
// the current character state, the offered suggestions and the single
// outstanding call to the narrative service.
package session

import (
	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/narrative"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

// Notices shown to the player as system messages.
const (
	StartFailedNotice    = "Could not reach the game master. Check your API key or try again later."
	ConnectionLostNotice = "Connection to the server was lost. Try the action again."
	ChooseOptionNotice   = "⚠️ Please choose one of the offered options."
	NoOptionsNotice      = "⚠️ No options are available right now. Start a new game to continue."
)

// Session is a point-in-time copy of the controller's state. It is safe to
// keep and read after the controller moves on.
type Session struct {
	ID          string
	Generation  uint64
	State       state.CharacterState
	Messages    []chat.Message
	Suggestions chat.Suggestions
	InFlight    bool
	Started     bool

	// Stuck is set when a closed-choice phase arrived without any options.
	Stuck bool
}

// Choice classifies the current phase for the UI.
func (s Session) Choice() state.Choice {
	return state.Classify(s.State.Phase)
}

// GameOver reports whether only a restart can continue the session.
func (s Session) GameOver() bool {
	return s.State.Over()
}

// Kind identifies the service call a Request stands for.
type Kind int

const (
	KindStart Kind = iota
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Request is a service call admitted by the controller. It is tagged with the
// generation it was issued under so results from before a restart can be
// recognized and dropped.
type Request struct {
	Kind       Kind
	Generation uint64
	Action     string
}

// Result is the outcome of dispatching a Request.
type Result struct {
	Request  Request
	Response *narrative.Response
	Err      error
}
