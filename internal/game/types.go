package game

import "github.com/go-gl/mathgl/mgl64"

// Camera maps the walkable square onto the screen, looking straight down.
// Forward (-Z) points up the screen.
type Camera struct {
	CenterX, CenterY float64 // screen position of the world origin
	Scale            float64 // pixels per world unit
}

// FitCamera returns a camera showing a square of half-extent boundary with a
// small margin on a w by h screen.
func FitCamera(w, h int, boundary float64) Camera {
	side := float64(w)
	if h < w {
		side = float64(h)
	}
	return Camera{
		CenterX: float64(w) / 2,
		CenterY: float64(h) / 2,
		Scale:   side / (2 * boundary * 1.1),
	}
}

// Project converts a world position to screen coordinates.
func (c Camera) Project(p mgl64.Vec3) (x, y float32) {
	return float32(c.CenterX + p.X()*c.Scale), float32(c.CenterY + p.Z()*c.Scale)
}

// Length converts a world distance to pixels.
func (c Camera) Length(d float64) float32 {
	return float32(d * c.Scale)
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
