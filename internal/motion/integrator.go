// Package motion integrates the avatar's position and heading.
//
// The integrator runs at a fixed nominal step: one call is one tick, and the
// per-tick speed constant is applied without delta-time scaling. Variable
// frame rates therefore change the apparent walking speed slightly.
package motion

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/roam/internal/input"
)

// AvatarState is the avatar's physical state. Y is up; the avatar walks on
// the X/Z plane.
type AvatarState struct {
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Facing   float64    `json:"facing"` // radians about +Y
}

// Speed returns the velocity magnitude.
func (s AvatarState) Speed() float64 {
	return s.Velocity.Len()
}

// Config holds the integrator constants.
type Config struct {
	Speed    float64    // impulse per held direction per tick
	Friction float64    // velocity decay factor per tick, in (0,1)
	Boundary float64    // half-extent of the walkable square
	Deadband float64    // minimum speed before the heading follows velocity
	Spawn    mgl64.Vec3 // reset point for degenerate positions

	// NormalizeDiagonal scales combined inputs back to Speed. Off by default:
	// diagonal movement is sqrt(2) faster.
	NormalizeDiagonal bool

	// DampWalls zeroes the velocity component along a clamped axis. Off by
	// default, so an avatar pushed into a wall keeps its velocity.
	DampWalls bool
}

// DefaultConfig returns the stock walking constants.
func DefaultConfig() Config {
	return Config{
		Speed:    0.04,
		Friction: 0.88,
		Boundary: 45,
		Deadband: 0.01,
		Spawn:    mgl64.Vec3{0, 0.5, 0},
	}
}

// Validate checks that the constants keep the integration stable.
func (c Config) Validate() error {
	if !(c.Friction > 0 && c.Friction < 1) {
		return fmt.Errorf("friction must be in (0,1), got %v", c.Friction)
	}
	if c.Speed <= 0 || math.IsInf(c.Speed, 0) || math.IsNaN(c.Speed) {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}
	if c.Boundary <= 0 || math.IsInf(c.Boundary, 0) || math.IsNaN(c.Boundary) {
		return fmt.Errorf("boundary must be positive, got %v", c.Boundary)
	}
	if !(c.Deadband >= 0) || math.IsInf(c.Deadband, 0) {
		return fmt.Errorf("deadband must be finite and not negative, got %v", c.Deadband)
	}
	if !finite(c.Spawn) {
		return fmt.Errorf("spawn must be finite, got %v", c.Spawn)
	}
	if math.Abs(c.Spawn.X()) > c.Boundary || math.Abs(c.Spawn.Z()) > c.Boundary {
		return fmt.Errorf("spawn %v is outside the boundary %v", c.Spawn, c.Boundary)
	}
	return nil
}

// Integrator advances an AvatarState by one tick.
type Integrator struct {
	cfg Config
}

// NewIntegrator creates an integrator. The config must be valid.
func NewIntegrator(cfg Config) (*Integrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid motion config: %w", err)
	}
	return &Integrator{cfg: cfg}, nil
}

// Config returns the integrator constants.
func (it *Integrator) Config() Config {
	return it.cfg
}

// Spawn returns a resting avatar at the spawn point.
func (it *Integrator) Spawn() AvatarState {
	return AvatarState{Position: it.cfg.Spawn}
}

// Impulse converts held directions into this tick's acceleration.
// Forward is -Z, right is +X.
func (it *Integrator) Impulse(in input.State) mgl64.Vec3 {
	var imp mgl64.Vec3
	if in.Active(input.Forward) {
		imp[2] -= it.cfg.Speed
	}
	if in.Active(input.Back) {
		imp[2] += it.cfg.Speed
	}
	if in.Active(input.Left) {
		imp[0] -= it.cfg.Speed
	}
	if in.Active(input.Right) {
		imp[0] += it.cfg.Speed
	}

	if it.cfg.NormalizeDiagonal {
		if l := imp.Len(); l > it.cfg.Speed {
			imp = imp.Mul(it.cfg.Speed / l)
		}
	}
	return imp
}

// Step returns the next state: decay velocity, add the impulse, move, clamp.
// Facing is carried over unchanged; see Facing.
func (it *Integrator) Step(prev AvatarState, in input.State) AvatarState {
	pos, vel := prev.Position, prev.Velocity
	if !finite(pos) {
		pos = it.cfg.Spawn
		vel = mgl64.Vec3{}
	}
	if !finite(vel) {
		vel = mgl64.Vec3{}
	}

	vel = vel.Mul(it.cfg.Friction).Add(it.Impulse(in))
	pos = pos.Add(vel)

	b := it.cfg.Boundary
	for _, axis := range [2]int{0, 2} {
		clamped := mgl64.Clamp(pos[axis], -b, b)
		if clamped != pos[axis] && it.cfg.DampWalls {
			vel[axis] = 0
		}
		pos[axis] = clamped
	}

	return AvatarState{Position: pos, Velocity: vel, Facing: prev.Facing}
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
