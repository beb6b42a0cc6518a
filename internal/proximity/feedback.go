package proximity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// The helpers below turn proximity readings into display parameters. The
// pulses are cosmetic and must never be fed back into Evaluate.

// RingPulseStep is how far the ring pulse phase advances per tick.
const RingPulseStep = 0.05

// Ring describes the ground ring around a landmark.
type Ring struct {
	Visible  bool    `json:"visible"`
	Scale    float64 `json:"scale"`
	Opacity  float64 `json:"opacity"`
	Emissive float64 `json:"emissive"`
}

// RingFor returns the ring for an intensity and a pulse phase. The ring is
// hidden when the avatar is outside the falloff radius.
func RingFor(intensity, pulsePhase float64) Ring {
	if intensity <= 0 {
		return Ring{}
	}
	pulse := math.Sin(pulsePhase)*0.2 + 0.8
	return Ring{
		Visible:  true,
		Scale:    1 + intensity*0.5,
		Opacity:  intensity * 0.6 * pulse,
		Emissive: intensity * 0.8,
	}
}

// Beacon describes the vertical light beam over an active landmark.
type Beacon struct {
	Visible bool    `json:"visible"`
	Height  float64 `json:"height"` // scale factor of the beam height
	Opacity float64 `json:"opacity"`
}

// BeaconFor returns the beam for an active flag and the scene clock.
func BeaconFor(active bool, elapsed float64) Beacon {
	if !active {
		return Beacon{}
	}
	pulse := math.Sin(elapsed*2)*0.5 + 0.5
	return Beacon{
		Visible: true,
		Height:  0.5 + pulse*0.5,
		Opacity: 0.3 + pulse*0.3,
	}
}

// Prompt describes the "press E" label shown inside the enter radius.
type Prompt struct {
	Visible bool    `json:"visible"`
	Opacity float64 `json:"opacity"`
}

// PromptFor fades the prompt from 1 at the anchor to 0.5 at the enter radius.
func PromptFor(distance, enterRadius float64) Prompt {
	if distance >= enterRadius {
		return Prompt{}
	}
	return Prompt{Visible: true, Opacity: 1 - (distance/enterRadius)*0.5}
}

// Arrow describes the floating marker above each landmark.
type Arrow struct {
	Height float64 `json:"height"` // offset above the anchor
	Spin   float64 `json:"spin"`   // rotation about Y
}

// ArrowAt returns the bobbing arrow for the scene clock.
func ArrowAt(elapsed float64) Arrow {
	return Arrow{
		Height: 4 + math.Sin(elapsed*2)*0.3,
		Spin:   elapsed * 0.5,
	}
}

// Float returns a landmark's idle vertical bob for an accumulated phase.
func Float(phase float64) float64 {
	return math.Sin(phase) * 0.2
}

// Glow returns a landmark's emissive glow for the scene clock.
func Glow(elapsed float64) float64 {
	return 0.4 + math.Sin(elapsed*2)*0.3
}

// Bearing returns the heading from one point to another using the same
// atan2(x, z) convention as the avatar's facing.
func Bearing(from, to mgl64.Vec3) float64 {
	d := to.Sub(from)
	return math.Atan2(d.X(), d.Z())
}

// Cue bundles the feedback for one landmark.
type Cue struct {
	ID     string `json:"id"`
	Ring   Ring   `json:"ring"`
	Beacon Beacon `json:"beacon"`
	Prompt Prompt `json:"prompt"`
	Arrow  Arrow  `json:"arrow"`
}

// Cues builds the feedback for every landmark in a report. active names the
// section the overlay currently shows; its landmark gets a beacon.
func Cues(rep Report, landmarks []Landmark, active string, pulsePhase, elapsed float64) []Cue {
	cues := make([]Cue, 0, len(rep.Readings))
	for i, rd := range rep.Readings {
		var enter float64
		if i < len(landmarks) && landmarks[i].ID == rd.ID {
			enter = landmarks[i].EnterRadius
		} else {
			for _, l := range landmarks {
				if l.ID == rd.ID {
					enter = l.EnterRadius
					break
				}
			}
		}
		cues = append(cues, Cue{
			ID:     rd.ID,
			Ring:   RingFor(rd.Intensity, pulsePhase),
			Beacon: BeaconFor(rd.ID == active, elapsed),
			Prompt: PromptFor(rd.Distance, enter),
			Arrow:  ArrowAt(elapsed),
		})
	}
	return cues
}
