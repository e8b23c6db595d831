package chat

import "slices"

// Suggestions are the quick-reply options offered for the current turn,
// in the order the narrative service returned them.
type Suggestions []string

// Contains reports an exact, case-sensitive match.
func (s Suggestions) Contains(text string) bool {
	return slices.Contains(s, text)
}

// Clone returns an independent copy; nil stays nil.
func (s Suggestions) Clone() Suggestions {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
