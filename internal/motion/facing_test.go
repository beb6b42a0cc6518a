package motion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFacingHoldsInsideDeadband(t *testing.T) {
	cases := []mgl64.Vec3{
		{},
		{0.01, 0, 0},
		{0, 0, -0.005},
		{0.007, 0, 0.007},
	}
	for _, v := range cases {
		assert.Equal(t, 1.25, Facing(1.25, v, 0.01), "velocity %v", v)
	}
}

func TestFacingFollowsVelocity(t *testing.T) {
	cases := []struct {
		V    mgl64.Vec3
		Want float64
	}{
		{V: mgl64.Vec3{0, 0, 1}, Want: 0},
		{V: mgl64.Vec3{1, 0, 0}, Want: math.Pi / 2},
		{V: mgl64.Vec3{0, 0, -1}, Want: math.Pi},
		{V: mgl64.Vec3{-1, 0, 0}, Want: -math.Pi / 2},
		{V: mgl64.Vec3{0.02, 0, 0.02}, Want: math.Pi / 4},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.Want, Facing(3, tc.V, 0.01), 1e-12, "velocity %v", tc.V)
		assert.InDelta(t, math.Atan2(tc.V.X(), tc.V.Z()), Facing(3, tc.V, 0.01), 1e-12)
	}
}

func TestOrientKeepsHeadingWhileCoasting(t *testing.T) {
	it, err := NewIntegrator(DefaultConfig())
	assert.NoError(t, err)

	s := it.Orient(AvatarState{Velocity: mgl64.Vec3{0.05, 0, 0}})
	assert.InDelta(t, math.Pi/2, s.Facing, 1e-12)

	for i := 0; i < 100; i++ {
		s = it.Orient(it.Step(s, nil))
	}
	assert.Less(t, s.Speed(), 0.01)
	assert.InDelta(t, math.Pi/2, s.Facing, 1e-12)
}
