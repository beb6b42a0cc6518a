package controller

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/anim"
	"chosenoffset.com/roam/internal/input"
	"chosenoffset.com/roam/internal/motion"
	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/proximity"
	"chosenoffset.com/roam/internal/scene"
)

const (
	// InteractKey toggles the project gallery while standing on the platform.
	InteractKey = "e"
	// DismissKey closes the gallery or the shown section.
	DismissKey = "escape"
)

// Frame is everything the collaborators need from one tick.
type Frame struct {
	Tick    uint64             `json:"tick"`
	Elapsed float64            `json:"elapsed"`
	Avatar  motion.AvatarState `json:"avatar"`
	Pose    anim.Pose          `json:"pose"`
	Report  proximity.Report   `json:"report"`
	Cues    []proximity.Cue    `json:"cues"`

	Nearest string  `json:"nearest,omitempty"`
	Bearing float64 `json:"bearing"` // heading from the avatar to Nearest

	Active       string `json:"active,omitempty"` // section on screen
	Gallery      bool   `json:"gallery"`
	NearPlatform bool   `json:"nearPlatform"`
}

// Driver owns the avatar and animation state and runs the components in a
// fixed order once per tick. Tick must be called from a single goroutine;
// Last and Avatar may be read from anywhere.
type Driver struct {
	core    Core
	sampler *input.Sampler
	engine  *proximity.Engine
	overlay *overlay.Overlay
	logger  *zap.Logger

	platform       mgl64.Vec3
	platformRadius float64

	avatar  motion.AvatarState
	blink   anim.BlinkState
	elapsed float64
	pulse   float64
	tick    uint64
	prevIn  input.State

	mu   sync.RWMutex
	last Frame

	// OnFrame is called at the end of every tick.
	OnFrame func(Frame)
}

// New builds a driver from a scene config. The sampler is shared with the
// input hosts; pass nil to create a private one.
func New(cfg *scene.Config, sampler *input.Sampler, logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sampler == nil {
		sampler = input.NewSampler()
	}

	it, err := motion.NewIntegrator(cfg.MotionSettings())
	if err != nil {
		return nil, err
	}
	if cfg.Animation.TickSeconds <= 0 {
		return nil, fmt.Errorf("animation tick must be positive, got %v", cfg.Animation.TickSeconds)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to register landmarks: %w", err)
	}
	engine := proximity.NewEngine(reg, logger.Named("proximity"))

	ov := overlay.New(cfg.Sections, func(id string) bool {
		_, ok := engine.Lookup(id)
		return ok
	})

	d := &Driver{
		core:           Core{Motion: it, Tick: cfg.Animation.TickSeconds},
		sampler:        sampler,
		engine:         engine,
		overlay:        ov,
		logger:         logger,
		platform:       cfg.PlatformPosition(),
		platformRadius: cfg.Platform.Radius,
		avatar:         it.Spawn(),
		prevIn:         input.State{},
	}

	logger.Info("Scene ready",
		zap.Int("landmarks", reg.Len()),
		zap.Float64("boundary", it.Config().Boundary),
		zap.Bool("normalizeDiagonal", it.Config().NormalizeDiagonal))
	return d, nil
}

// Sampler returns the input sampler the driver reads each tick.
func (d *Driver) Sampler() *input.Sampler { return d.sampler }

// Engine returns the proximity engine.
func (d *Driver) Engine() *proximity.Engine { return d.engine }

// Overlay returns the section overlay.
func (d *Driver) Overlay() *overlay.Overlay { return d.overlay }

// Boundary returns the half-extent of the walkable square.
func (d *Driver) Boundary() float64 { return d.core.Motion.Config().Boundary }

// Platform returns the gallery platform position and radius.
func (d *Driver) Platform() (mgl64.Vec3, float64) { return d.platform, d.platformRadius }

// Tick runs one tick and returns the resulting frame.
func (d *Driver) Tick() Frame {
	in := d.sampler.Snapshot()

	d.elapsed += d.core.Tick
	var pose anim.Pose
	d.avatar, d.blink, pose = d.core.Update(d.avatar, in, d.blink, d.elapsed)
	d.pulse += proximity.RingPulseStep
	d.tick++

	rep := d.engine.Evaluate(d.avatar.Position)
	d.overlay.Sync(rep.Entered)

	nearPlatform := d.onPlatform(d.avatar.Position)
	d.handleKeys(in, nearPlatform)
	d.prevIn = in

	frame := Frame{
		Tick:         d.tick,
		Elapsed:      d.elapsed,
		Avatar:       d.avatar,
		Pose:         pose,
		Report:       rep,
		Active:       d.overlay.Active(),
		Gallery:      d.overlay.GalleryOpen(),
		NearPlatform: nearPlatform,
	}
	frame.Cues = proximity.Cues(rep, d.engine.Landmarks(), frame.Active, d.pulse, d.elapsed)
	if l, ok := d.engine.Nearest(d.avatar.Position); ok {
		frame.Nearest = l.ID
		frame.Bearing = proximity.Bearing(d.avatar.Position, l.Position)
	}

	d.mu.Lock()
	d.last = frame
	d.mu.Unlock()

	if d.OnFrame != nil {
		d.OnFrame(frame)
	}
	return frame
}

// Last returns the most recent frame.
func (d *Driver) Last() Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Reset puts the avatar back on the spawn point and releases every key.
// Call it from the ticking goroutine.
func (d *Driver) Reset() {
	d.sampler.Reset()
	d.avatar = d.core.Motion.Spawn()
	d.prevIn = input.State{}
	d.logger.Debug("Avatar respawned")
}

// Avatar returns the avatar state after the last tick.
func (d *Driver) Avatar() motion.AvatarState {
	return d.Last().Avatar
}

func (d *Driver) onPlatform(pos mgl64.Vec3) bool {
	dx, dz := pos.X()-d.platform.X(), pos.Z()-d.platform.Z()
	return math.Hypot(dx, dz) < d.platformRadius
}

// handleKeys reacts to keys that went down this tick.
func (d *Driver) handleKeys(in input.State, nearPlatform bool) {
	if pressed(in, d.prevIn, InteractKey) && nearPlatform {
		if d.overlay.GalleryOpen() {
			d.overlay.CloseGallery()
		} else {
			d.overlay.OpenGallery()
		}
	}
	if pressed(in, d.prevIn, DismissKey) {
		if d.overlay.GalleryOpen() {
			d.overlay.CloseGallery()
		} else {
			d.overlay.Close()
		}
	}
}

func pressed(now, prev input.State, key string) bool {
	return now.Held(key) && !prev.Held(key)
}
