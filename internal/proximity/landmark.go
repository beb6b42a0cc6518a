// Package proximity couples the moving avatar to a fixed set of landmarks.
//
// Each tick the Engine measures the distance from the avatar to every
// landmark, reports a continuous intensity for feedback visuals, and fires
// an enter notification for every landmark whose enter radius contains the
// avatar. The notification is level-triggered: it repeats on every tick the
// avatar stays inside, and consumers are expected to ignore repeats.
package proximity

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrEmptyID is returned when a landmark has no id.
	ErrEmptyID = errors.New("landmark id is empty")
	// ErrDuplicateLandmark is returned when an id is registered twice.
	ErrDuplicateLandmark = errors.New("landmark already registered")
	// ErrInvalidRadius is returned unless 0 < enter radius < falloff radius.
	ErrInvalidRadius = errors.New("landmark radii must satisfy 0 < enter < falloff")
	// ErrInvalidPosition is returned for NaN or infinite coordinates.
	ErrInvalidPosition = errors.New("landmark position is not finite")
	// ErrSealed is returned when registering after the engine was built.
	ErrSealed = errors.New("landmark registry is sealed")
)

// Landmark is a fixed point of interest with two concentric radii.
type Landmark struct {
	ID            string     `json:"id"`
	Label         string     `json:"label,omitempty"`
	Color         string     `json:"color,omitempty"`
	Position      mgl64.Vec3 `json:"position"`
	EnterRadius   float64    `json:"enterRadius"`
	FalloffRadius float64    `json:"falloffRadius"`
}

// Validate checks the landmark's id, position, and radii.
func (l Landmark) Validate() error {
	if l.ID == "" {
		return ErrEmptyID
	}
	for _, c := range l.Position {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%s: %w", l.ID, ErrInvalidPosition)
		}
	}
	if !(l.EnterRadius > 0 && l.FalloffRadius > l.EnterRadius) || math.IsInf(l.FalloffRadius, 0) {
		return fmt.Errorf("%s (enter=%v falloff=%v): %w", l.ID, l.EnterRadius, l.FalloffRadius, ErrInvalidRadius)
	}
	return nil
}

// Registry collects landmarks at scene setup. Once an Engine has been built
// from it the registry is sealed and rejects further registrations.
type Registry struct {
	landmarks []Landmark
	index     map[string]int
	sealed    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a landmark.
func (r *Registry) Register(l Landmark) error {
	if r.sealed {
		return fmt.Errorf("register %q: %w", l.ID, ErrSealed)
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("failed to register landmark: %w", err)
	}
	if _, ok := r.index[l.ID]; ok {
		return fmt.Errorf("register %q: %w", l.ID, ErrDuplicateLandmark)
	}
	r.index[l.ID] = len(r.landmarks)
	r.landmarks = append(r.landmarks, l)
	return nil
}

// Len returns the number of registered landmarks.
func (r *Registry) Len() int {
	return len(r.landmarks)
}

// Landmarks returns a copy of the registered landmarks in registration order.
func (r *Registry) Landmarks() []Landmark {
	out := make([]Landmark, len(r.landmarks))
	copy(out, r.landmarks)
	return out
}
