package controller

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"chosenoffset.com/roam/internal/anim"
	"chosenoffset.com/roam/internal/input"
	"chosenoffset.com/roam/internal/motion"
	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/scene"
)

func newDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New(scene.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	return d
}

func TestUpdateSingleTick(t *testing.T) {
	start := motion.AvatarState{Position: mgl64.Vec3{0, 0.5, 0}}
	next, blink, pose := Update(start, input.Of("w"), anim.BlinkState{}, anim.NominalTick)

	assert.InDelta(t, -0.04, next.Velocity.Z(), 1e-12)
	assert.InDelta(t, -0.04, next.Position.Z(), 1e-12)
	assert.InDelta(t, 0.5, next.Position.Y(), 1e-12)
	assert.InDelta(t, math.Pi, math.Abs(next.Facing), 1e-12, "forward faces -Z")

	assert.InDelta(t, anim.NominalTick, blink.Timer, 1e-12)
	assert.False(t, blink.Blinking)
	assert.Equal(t, 1.0, pose.EyeScale)

	swing, _ := anim.Tail(anim.NominalTick, next.Speed())
	assert.InDelta(t, swing, pose.TailSwing, 1e-12)
}

func TestUpdateIdleKeepsHeading(t *testing.T) {
	prev := motion.AvatarState{Position: mgl64.Vec3{1, 0.5, 1}, Facing: 1.2}
	next, _, _ := Update(prev, input.State{}, anim.BlinkState{}, 0)
	assert.Equal(t, prev.Position, next.Position)
	assert.Equal(t, 1.2, next.Facing)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := scene.DefaultConfig()
	cfg.Motion.Friction = 1
	_, err := New(cfg, nil, nil)
	assert.Error(t, err)

	cfg = scene.DefaultConfig()
	cfg.Landmarks = append(cfg.Landmarks, cfg.Landmarks[0])
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestDriverStartsAtSpawn(t *testing.T) {
	d := newDriver(t)
	f := d.Tick()
	assert.Equal(t, uint64(1), f.Tick)
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, f.Avatar.Position)
	assert.Len(t, f.Report.Readings, 4)
	assert.Len(t, f.Cues, 4)
	assert.True(t, f.NearPlatform)
	assert.Equal(t, f, d.Last())
}

func TestDriverWalkOpensSectionOnce(t *testing.T) {
	d := newDriver(t)
	var opened []overlay.Event
	d.Overlay().OnEvent = func(ev overlay.Event) {
		if ev.Type == overlay.SectionOpened {
			opened = append(opened, ev)
		}
	}

	d.Sampler().Press("s")
	d.Sampler().Press("d")

	enteredAt := -1
	for i := 0; i < 400; i++ {
		f := d.Tick()
		if enteredAt < 0 && len(f.Report.Entered) > 0 {
			enteredAt = i
			assert.Equal(t, []string{"contact"}, f.Report.Entered)
			assert.Equal(t, "contact", f.Active)
		}
		b := d.Boundary()
		require.LessOrEqual(t, math.Abs(f.Avatar.Position.X()), b)
		require.LessOrEqual(t, math.Abs(f.Avatar.Position.Z()), b)
	}

	require.GreaterOrEqual(t, enteredAt, 0, "avatar should pass through the contact landmark")
	require.Len(t, opened, 1)
	assert.Equal(t, "contact", opened[0].ID)

	last := d.Last()
	assert.InDelta(t, 45, last.Avatar.Position.X(), 1e-9)
	assert.InDelta(t, 45, last.Avatar.Position.Z(), 1e-9)
	assert.Equal(t, "contact", last.Nearest)
}

func TestDriverDismissKeyClosesSection(t *testing.T) {
	cfg := scene.DefaultConfig()
	cfg.Motion.Spawn = [3]float64{10, 0, 10}
	d, err := New(cfg, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "contact", d.Tick().Active)

	d.Sampler().Press(DismissKey)
	assert.Equal(t, "", d.Tick().Active)
	assert.Equal(t, "", d.Tick().Active, "stays closed while inside")

	d.Sampler().Release(DismissKey)
	assert.Equal(t, "", d.Tick().Active)
}

func TestDriverInteractTogglesGalleryOnPlatform(t *testing.T) {
	d := newDriver(t)

	d.Sampler().Press(InteractKey)
	assert.True(t, d.Tick().Gallery)
	assert.True(t, d.Tick().Gallery, "holding the key does not toggle again")

	d.Sampler().Release(InteractKey)
	d.Tick()
	d.Sampler().Press(InteractKey)
	assert.False(t, d.Tick().Gallery)
}

func TestDriverInteractIgnoredAwayFromPlatform(t *testing.T) {
	cfg := scene.DefaultConfig()
	cfg.Motion.Spawn = [3]float64{20, 0.5, 0}
	d, err := New(cfg, nil, nil)
	require.NoError(t, err)

	d.Sampler().Press(InteractKey)
	f := d.Tick()
	assert.False(t, f.NearPlatform)
	assert.False(t, f.Gallery)
}

func TestShowUnregisteredSectionIsReportedOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d, err := New(scene.DefaultConfig(), nil, zap.New(core))
	require.NoError(t, err)

	require.True(t, d.Overlay().Show("about"))
	assert.False(t, d.Overlay().Show("blog"))
	assert.False(t, d.Overlay().Show("blog"))

	assert.Equal(t, "about", d.Overlay().Active())
	assert.Equal(t, 1, logs.FilterField(zap.String("id", "blog")).Len())
}

func TestDriverReset(t *testing.T) {
	d := newDriver(t)
	d.Sampler().Press("w")
	for i := 0; i < 30; i++ {
		d.Tick()
	}
	require.Less(t, d.Avatar().Position.Z(), -1.0)

	d.Reset()
	assert.False(t, d.Sampler().Snapshot().Held("w"))
	f := d.Tick()
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, f.Avatar.Position)
}

func TestDriverOnFrame(t *testing.T) {
	d := newDriver(t)
	var ticks []uint64
	d.OnFrame = func(f Frame) { ticks = append(ticks, f.Tick) }
	d.Tick()
	d.Tick()
	assert.Equal(t, []uint64{1, 2}, ticks)
}

func TestFrameJSON(t *testing.T) {
	d := newDriver(t)
	data, err := json.Marshal(d.Tick())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"tick", "avatar", "pose", "report", "cues", "nearest"} {
		assert.Contains(t, doc, key)
	}
}
