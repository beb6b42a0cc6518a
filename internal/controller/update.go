// Package controller runs the per-tick loop: sample input, integrate motion,
// turn the avatar, animate it, and evaluate landmark proximity against the
// new position.
package controller

import (
	"chosenoffset.com/roam/internal/anim"
	"chosenoffset.com/roam/internal/input"
	"chosenoffset.com/roam/internal/motion"
)

// Core is the pure part of a tick: motion, heading and animation.
type Core struct {
	Motion *motion.Integrator
	Tick   float64 // animation clock advance per tick, seconds
}

var defaultCore = func() Core {
	it, err := motion.NewIntegrator(motion.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return Core{Motion: it, Tick: anim.NominalTick}
}()

// Update advances one tick with the default constants. elapsed is the
// animation clock for the tick being produced.
func Update(prev motion.AvatarState, in input.State, blink anim.BlinkState, elapsed float64) (motion.AvatarState, anim.BlinkState, anim.Pose) {
	return defaultCore.Update(prev, in, blink, elapsed)
}

// Update advances one tick: step, orient, then blink and pose. The pose
// uses the speed after the step so the tail reacts on the same tick.
func (c Core) Update(prev motion.AvatarState, in input.State, blink anim.BlinkState, elapsed float64) (motion.AvatarState, anim.BlinkState, anim.Pose) {
	next := c.Motion.Orient(c.Motion.Step(prev, in))
	blink = anim.Step(blink, c.Tick)
	return next, blink, anim.PoseAt(blink, elapsed, next.Speed())
}
