package proximity

import (
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Reading is one landmark's proximity for one tick.
type Reading struct {
	ID        string  `json:"id"`
	Distance  float64 `json:"distance"`
	Intensity float64 `json:"intensity"` // 1 inside the enter radius, 0 at/after falloff
	Entered   bool    `json:"entered"`
}

// Report is the per-tick proximity snapshot. It is derived every tick and
// never stored.
type Report struct {
	Readings []Reading `json:"readings"`
	Entered  []string  `json:"entered,omitempty"` // ids inside their enter radius, registration order
}

// Reading returns the reading for id.
func (r Report) Reading(id string) (Reading, bool) {
	for _, rd := range r.Readings {
		if rd.ID == id {
			return rd, true
		}
	}
	return Reading{}, false
}

// EnterHandler is called with a landmark id on every tick the avatar is
// inside that landmark's enter radius.
type EnterHandler func(id string)

// Engine evaluates proximity against a sealed set of landmarks.
type Engine struct {
	landmarks []Landmark
	index     map[string]int
	tree      *rtreego.Rtree
	logger    *zap.Logger

	// OnEnter receives level-triggered enter notifications.
	OnEnter EnterHandler

	mu       sync.Mutex
	reported map[string]bool // unknown ids already warned about
}

// NewEngine seals the registry and builds an engine over its landmarks.
func NewEngine(reg *Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg.sealed = true

	e := &Engine{
		landmarks: reg.Landmarks(),
		index:     make(map[string]int, len(reg.index)),
		tree:      rtreego.NewTree(3, 2, 8),
		logger:    logger,
		reported:  make(map[string]bool),
	}
	for i, l := range e.landmarks {
		e.index[l.ID] = i
		e.tree.Insert(&indexed{landmark: l, bounds: point(l.Position).ToRect(pointTolerance)})
	}
	return e
}

// Landmarks returns the engine's landmarks in registration order.
func (e *Engine) Landmarks() []Landmark {
	out := make([]Landmark, len(e.landmarks))
	copy(out, e.landmarks)
	return out
}

// Evaluate measures every landmark against pos, fires OnEnter for each one
// whose enter radius contains pos, and returns the report. Distance is the
// full 3D distance to the landmark anchor.
func (e *Engine) Evaluate(pos mgl64.Vec3) Report {
	rep := Evaluate(pos, e.landmarks)
	if e.OnEnter != nil {
		for _, id := range rep.Entered {
			e.OnEnter(id)
		}
	}
	return rep
}

// Evaluate is the stateless form of Engine.Evaluate. It does not fire
// callbacks.
func Evaluate(pos mgl64.Vec3, landmarks []Landmark) Report {
	rep := Report{Readings: make([]Reading, 0, len(landmarks))}
	for _, l := range landmarks {
		d := pos.Sub(l.Position).Len()
		entered := d < l.EnterRadius
		rep.Readings = append(rep.Readings, Reading{
			ID:        l.ID,
			Distance:  d,
			Intensity: Intensity(d, l.EnterRadius, l.FalloffRadius),
			Entered:   entered,
		})
		if entered {
			rep.Entered = append(rep.Entered, l.ID)
		}
	}
	return rep
}

// Intensity maps a distance to a closeness in [0,1]: 1 inside the enter
// radius, a linear ramp 1-d/falloff outside it, 0 at and beyond falloff.
func Intensity(distance, enterRadius, falloffRadius float64) float64 {
	if distance < enterRadius {
		return 1
	}
	return mgl64.Clamp(1-distance/falloffRadius, 0, 1)
}

// Lookup returns the landmark registered under id. An unknown id is a
// configuration error: it is logged the first time and ignored afterwards.
func (e *Engine) Lookup(id string) (Landmark, bool) {
	if i, ok := e.index[id]; ok {
		return e.landmarks[i], true
	}

	e.mu.Lock()
	first := !e.reported[id]
	e.reported[id] = true
	e.mu.Unlock()

	if first {
		e.logger.Warn("reference to unregistered landmark", zap.String("id", id))
	}
	return Landmark{}, false
}

// Nearest returns the landmark closest to pos.
func (e *Engine) Nearest(pos mgl64.Vec3) (Landmark, bool) {
	if len(e.landmarks) == 0 {
		return Landmark{}, false
	}
	hit := e.tree.NearestNeighbor(point(pos))
	if hit == nil {
		return Landmark{}, false
	}
	return hit.(*indexed).landmark, true
}

const pointTolerance = 1e-3

// indexed stores a landmark in the R-tree.
type indexed struct {
	landmark Landmark
	bounds   rtreego.Rect
}

func (i *indexed) Bounds() rtreego.Rect {
	return i.bounds
}

func point(v mgl64.Vec3) rtreego.Point {
	return rtreego.Point{v.X(), v.Y(), v.Z()}
}
