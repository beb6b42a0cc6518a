// Package input tracks which movement keys are currently held.
//
// Hosts (the ebiten window, the terminal, websocket clients) report key
// transitions to a Sampler; the tick driver reads one State snapshot per
// tick. Only the latest held/not-held value per key matters.
package input

import "strings"

// State maps a normalized key name to its held flag.
// A key that is absent from the map is not held.
type State map[string]bool

// Direction is one of the four movement intents.
type Direction int

const (
	Forward Direction = iota
	Back
	Left
	Right
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Directions lists every direction in a stable order.
var Directions = []Direction{Forward, Back, Left, Right}

// aliases is the movement vocabulary: a letter key and an arrow key per direction.
var aliases = map[Direction][]string{
	Forward: {"w", "arrowup"},
	Back:    {"s", "arrowdown"},
	Left:    {"a", "arrowleft"},
	Right:   {"d", "arrowright"},
}

// Aliases returns the key names bound to a direction.
func Aliases(d Direction) []string {
	return aliases[d]
}

// Normalize lower-cases and trims a key name so "ArrowUp" and "arrowup" match.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// IsMovementKey reports whether key belongs to the movement vocabulary.
func IsMovementKey(key string) bool {
	key = Normalize(key)
	for _, names := range aliases {
		for _, name := range names {
			if name == key {
				return true
			}
		}
	}
	return false
}

// Held reports whether a key is held. Missing keys read as false.
func (s State) Held(key string) bool {
	return s[Normalize(key)]
}

// Active reports whether any alias of the direction is held.
func (s State) Active(d Direction) bool {
	for _, name := range aliases[d] {
		if s[name] {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Of builds a State with the given keys held. Handy for tests and replays.
func Of(keys ...string) State {
	s := make(State, len(keys))
	for _, k := range keys {
		s[Normalize(k)] = true
	}
	return s
}
