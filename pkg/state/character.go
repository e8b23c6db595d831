package state

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidState is returned when a character state cannot be displayed or merged.
var ErrInvalidState = errors.New("invalid character state")

// CharacterState is the authoritative snapshot of the player and the world.
// Each narrative response replaces it wholesale; it is never patched field by field.
type CharacterState struct {
	Phase  Phase  `json:"phase"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Class  string `json:"class,omitempty"` // e.g. "Warrior", "Mage"

	Location string `json:"location"`

	// Vitals
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
	Level int `json:"level"`
	XP    int `json:"xp"`

	// Primary attributes
	Strength     int `json:"strength"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`

	Inventory     []string `json:"inventory"`
	StatusEffects []string `json:"statusEffects"`
	IsGameOver    bool     `json:"isGameOver"`
}

// Default returns the state shown before the first response arrives,
// and after a restart or a failed start.
func Default() CharacterState {
	return CharacterState{
		Phase:         PhaseStart,
		UserID:        "player_1",
		Name:          "Traveler",
		Gender:        "Unknown",
		Location:      "Unknown",
		HP:            100,
		MaxHP:         100,
		Level:         1,
		XP:            0,
		Strength:      10,
		Agility:       10,
		Intelligence:  10,
		Inventory:     []string{},
		StatusEffects: []string{},
	}
}

// Validate rejects states the session cannot safely hold.
func (cs *CharacterState) Validate() error {
	if cs == nil {
		return fmt.Errorf("%w: missing state", ErrInvalidState)
	}
	if !cs.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidState, cs.Phase)
	}
	if cs.MaxHP < 0 {
		return fmt.Errorf("%w: maxHp %d is negative", ErrInvalidState, cs.MaxHP)
	}
	if cs.Level < 0 {
		return fmt.Errorf("%w: level %d is negative", ErrInvalidState, cs.Level)
	}
	return nil
}

// Normalize returns a copy with HP clamped to [0, MaxHP] and XP floored at zero.
// The bool reports whether any value had to be clamped.
func (cs CharacterState) Normalize() (CharacterState, bool) {
	out := cs.Clone()
	changed := false
	if out.HP < 0 {
		out.HP = 0
		changed = true
	}
	if out.HP > out.MaxHP {
		out.HP = out.MaxHP
		changed = true
	}
	if out.XP < 0 {
		out.XP = 0
		changed = true
	}
	return out, changed
}

// Clone deep-copies the state so that snapshots never share slices.
func (cs CharacterState) Clone() CharacterState {
	out := cs
	out.Inventory = cloneStrings(cs.Inventory)
	out.StatusEffects = cloneStrings(cs.StatusEffects)
	return out
}

// Equal reports whether two states hold the same values.
func (cs CharacterState) Equal(other CharacterState) bool {
	if !slices.Equal(cs.Inventory, other.Inventory) || !slices.Equal(cs.StatusEffects, other.StatusEffects) {
		return false
	}
	return cs.Phase == other.Phase &&
		cs.UserID == other.UserID &&
		cs.Name == other.Name &&
		cs.Gender == other.Gender &&
		cs.Class == other.Class &&
		cs.Location == other.Location &&
		cs.HP == other.HP &&
		cs.MaxHP == other.MaxHP &&
		cs.Level == other.Level &&
		cs.XP == other.XP &&
		cs.Strength == other.Strength &&
		cs.Agility == other.Agility &&
		cs.Intelligence == other.Intelligence &&
		cs.IsGameOver == other.IsGameOver
}

// Over reports whether the game has ended.
func (cs CharacterState) Over() bool {
	return cs.IsGameOver || cs.Phase == PhaseGameOver
}

// HPPercent is the health bar fill, clamped to 0..100.
func (cs CharacterState) HPPercent() int {
	if cs.MaxHP <= 0 {
		return 100
	}
	pct := cs.HP * 100 / cs.MaxHP
	return max(0, min(100, pct))
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
