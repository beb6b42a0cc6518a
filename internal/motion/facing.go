package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Facing returns the heading for velocity v. Below the deadband the previous
// heading is kept, so an idle avatar does not snap back to zero.
// The angle is atan2(x, z): 0 faces +Z, pi/2 faces +X.
func Facing(prev float64, v mgl64.Vec3, deadband float64) float64 {
	if v.Len() <= deadband {
		return prev
	}
	return math.Atan2(v.X(), v.Z())
}

// Orient applies Facing to a state using the integrator's deadband.
func (it *Integrator) Orient(s AvatarState) AvatarState {
	s.Facing = Facing(s.Facing, s.Velocity, it.cfg.Deadband)
	return s
}
