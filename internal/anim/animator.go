// Package anim drives the avatar's secondary animation: a two-phase blink
// and a speed-scaled tail sway. None of it affects movement.
package anim

import "math"

const (
	// OpenDuration is how long the eyes stay open between blinks.
	OpenDuration = 3.0
	// BlinkDuration is how long a blink lasts.
	BlinkDuration = 0.15
	// NominalTick is the per-tick clock advance at 60 ticks per second.
	NominalTick = 0.016

	closedEyeScale = 0.1
)

// BlinkState is the blink timer and phase.
type BlinkState struct {
	Timer    float64 `json:"timer"`
	Blinking bool    `json:"blinking"`
}

// Pose is what a renderer needs to animate the avatar for one frame.
type Pose struct {
	EyeScale  float64 `json:"eyeScale"`
	TailSwing float64 `json:"tailSwing"` // rotation about the tail's Z axis
	TailPitch float64 `json:"tailPitch"` // rotation about the tail's X axis
	Blinking  bool    `json:"blinking"`
}

// Step advances the blink timer by dt seconds and switches phase once the
// current phase has run past its duration. The timer restarts at zero on
// every switch.
func Step(b BlinkState, dt float64) BlinkState {
	b.Timer += dt
	switch {
	case !b.Blinking && b.Timer > OpenDuration:
		b.Blinking = true
		b.Timer = 0
	case b.Blinking && b.Timer > BlinkDuration:
		b.Blinking = false
		b.Timer = 0
	}
	return b
}

// Tail returns the tail rotation for a running clock and the avatar speed.
// Moving faster widens the swing.
func Tail(elapsed, speed float64) (swing, pitch float64) {
	swing = math.Sin(elapsed*8) * (0.3 + speed*2)
	pitch = math.Sin(elapsed*4) * 0.2
	return swing, pitch
}

// PoseAt combines the blink phase and tail sway into a Pose.
func PoseAt(b BlinkState, elapsed, speed float64) Pose {
	swing, pitch := Tail(elapsed, speed)
	eye := 1.0
	if b.Blinking {
		eye = closedEyeScale
	}
	return Pose{
		EyeScale:  eye,
		TailSwing: swing,
		TailPitch: pitch,
		Blinking:  b.Blinking,
	}
}
