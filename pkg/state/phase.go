package state

import (
	"errors"
	"slices"
	"strings"
)

// Phase is the discrete stage of the adventure. The narrative service decides
// transitions; this package only classifies phases and gates input.
type Phase string

const (
	PhaseStart           Phase = "start"
	PhaseGenderSelection Phase = "gender_selection"
	PhaseClassSelection  Phase = "class_selection"
	PhaseGameLoop        Phase = "game_loop"
	PhaseGameOver        Phase = "game_over"
)

var phaseLabels = map[Phase]string{
	PhaseStart:           "Prologue",
	PhaseGenderSelection: "Choosing gender",
	PhaseClassSelection:  "Choosing class",
	PhaseGameLoop:        "Adventure",
	PhaseGameOver:        "Game over",
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	_, ok := phaseLabels[p]
	return ok
}

func (p Phase) String() string {
	return string(p)
}

// Label is a short human-readable name for the phase.
func (p Phase) Label() string {
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return string(p)
}

// Choice describes what kind of input a phase accepts.
type Choice int

const (
	// ChoiceOpen accepts any non-empty free text.
	ChoiceOpen Choice = iota
	// ChoiceClosed accepts only an exact match from the offered suggestions.
	ChoiceClosed
	// ChoiceTerminal means the game is over; the UI offers only a restart.
	ChoiceTerminal
)

func (c Choice) String() string {
	switch c {
	case ChoiceClosed:
		return "closed"
	case ChoiceTerminal:
		return "terminal"
	default:
		return "open"
	}
}

// Classify is the single source of truth for how a phase treats input.
// Both the admission gate and the UI use it.
func Classify(p Phase) Choice {
	switch p {
	case PhaseGenderSelection, PhaseClassSelection:
		return ChoiceClosed
	case PhaseGameOver:
		return ChoiceTerminal
	default:
		return ChoiceOpen
	}
}

var (
	ErrEmptyAction = errors.New("action is empty")
	ErrNotOffered  = errors.New("action is not one of the offered options")
	// ErrNoOptions means a closed-choice phase arrived without any options,
	// so nothing can be admitted until the session is restarted.
	ErrNoOptions = errors.New("no options offered for a closed-choice phase")
)

// Admit decides whether text may be forwarded to the narrative service
// given the current phase and the offered suggestions.
func Admit(p Phase, suggestions []string, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyAction
	}
	if Classify(p) != ChoiceClosed {
		return nil
	}
	if len(suggestions) == 0 {
		return ErrNoOptions
	}
	if !slices.Contains(suggestions, text) {
		return ErrNotOffered
	}
	return nil
}

// IsStuck reports a closed-choice phase with no way forward.
func IsStuck(p Phase, suggestions []string) bool {
	return Classify(p) == ChoiceClosed && len(suggestions) == 0
}
