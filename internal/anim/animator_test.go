package anim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlinkOpensForThreeSeconds(t *testing.T) {
	b := BlinkState{}
	for i := 0; i < 12; i++ {
		b = Step(b, 0.25)
		assert.False(t, b.Blinking, "step %d", i)
	}
	assert.Equal(t, 3.0, b.Timer, "exactly three seconds is not yet past the threshold")

	b = Step(b, 0.25)
	assert.True(t, b.Blinking)
	assert.Equal(t, 0.0, b.Timer, "timer resets on transition")
}

func TestBlinkClosesAfterBlinkDuration(t *testing.T) {
	b := Step(BlinkState{Blinking: true}, BlinkDuration)
	assert.True(t, b.Blinking, "exactly the blink duration keeps the eyes closed")

	b = Step(b, 0.001)
	assert.False(t, b.Blinking)
	assert.Equal(t, 0.0, b.Timer)
}

func TestBlinkCycleAtNominalTick(t *testing.T) {
	b := BlinkState{}
	var openTicks, closedTicks int
	for !b.Blinking {
		b = Step(b, NominalTick)
		openTicks++
	}
	for b.Blinking {
		b = Step(b, NominalTick)
		closedTicks++
	}
	// 3.0/0.016 = 187.5 and 0.15/0.016 = 9.375
	assert.Equal(t, 188, openTicks)
	assert.Equal(t, 10, closedTicks)
}

func TestTailScalesWithSpeed(t *testing.T) {
	elapsed := math.Pi / 16 // sin(elapsed*8) == 1
	slow, _ := Tail(elapsed, 0)
	fast, _ := Tail(elapsed, 0.3)

	assert.InDelta(t, 0.3, slow, 1e-12)
	assert.InDelta(t, 0.9, fast, 1e-12)
}

func TestTailIndependentOfBlink(t *testing.T) {
	open := PoseAt(BlinkState{}, 1.7, 0.2)
	closed := PoseAt(BlinkState{Blinking: true}, 1.7, 0.2)

	assert.Equal(t, open.TailSwing, closed.TailSwing)
	assert.Equal(t, open.TailPitch, closed.TailPitch)
	assert.Equal(t, 1.0, open.EyeScale)
	assert.Equal(t, closedEyeScale, closed.EyeScale)
	assert.True(t, closed.Blinking)
}
