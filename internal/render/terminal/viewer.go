// Package terminal hosts the scene in a text terminal: a character-grid
// view from above, with keyboard input through tcell.
package terminal

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/overlay"
)

// DefaultHoldTimeout covers the usual 250-500ms auto-repeat delay.
const DefaultHoldTimeout = 550 * time.Millisecond

// footerRows are reserved under the map for status and section text.
const footerRows = 3

var headings = []rune{'↓', '↘', '→', '↗', '↑', '↖', '←', '↙'}

// Viewer draws frames onto a tcell screen and feeds its key events to the
// driver's sampler.
type Viewer struct {
	screen tcell.Screen
	driver *controller.Driver
	hold   *HoldTracker
	logger *zap.Logger

	release func()
	now     func() time.Time

	mu    sync.Mutex
	panel *overlay.Content

	// OnFrame is called after each tick is drawn.
	OnFrame func(controller.Frame)
}

// NewViewer attaches a viewer to an initialized screen.
func NewViewer(screen tcell.Screen, driver *controller.Driver, holdTimeout time.Duration, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	hold := NewHoldTracker(holdTimeout)
	return &Viewer{
		screen:  screen,
		driver:  driver,
		hold:    hold,
		logger:  logger,
		release: driver.Sampler().Subscribe(hold),
		now:     time.Now,
	}
}

// Close detaches the viewer's keys from the sampler.
func (v *Viewer) Close() {
	v.release()
}

// HandleEvent shows or hides the section text. It is meant for
// overlay.OnEvent.
func (v *Viewer) HandleEvent(ev overlay.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch ev.Type {
	case overlay.SectionOpened:
		content := ev.Content
		v.panel = &content
	case overlay.SectionClosed:
		v.panel = nil
	}
}

// Run ticks at tickRate until ctx is cancelled or the user quits with q or
// Ctrl-C.
func (v *Viewer) Run(ctx context.Context, tickRate int) error {
	if tickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", tickRate)
	}

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	v.logger.Info("Terminal viewer running", zap.Int("tps", tickRate))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleInput(ev, v.now()) {
				v.logger.Info("Quit requested")
				return nil
			}
		case <-ticker.C:
			v.Step(v.now())
		}
	}
}

// Step expires stale keys, runs one tick, and draws it.
func (v *Viewer) Step(now time.Time) controller.Frame {
	v.hold.Expire(now)
	f := v.driver.Tick()
	v.Draw(f)
	v.screen.Show()
	if v.OnFrame != nil {
		v.OnFrame(f)
	}
	return f
}

// handleInput reports false when the user asked to quit.
func (v *Viewer) handleInput(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		if name := keyName(ev); name != "" {
			v.hold.Touch(name, now)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// keyName maps a terminal key to the sampler's key names.
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "arrowup"
	case tcell.KeyDown:
		return "arrowdown"
	case tcell.KeyLeft:
		return "arrowleft"
	case tcell.KeyRight:
		return "arrowright"
	case tcell.KeyEscape:
		return "escape"
	case tcell.KeyRune:
		return strings.ToLower(string(ev.Rune()))
	default:
		return ""
	}
}

// grid maps world X/Z onto screen cells.
type grid struct {
	boundary   float64
	cols, rows int
	sx, sz     float64
}

func newGrid(w, h int, boundary float64) grid {
	rows := h - footerRows
	if rows < 3 {
		rows = 3
	}
	return grid{
		boundary: boundary,
		cols:     w,
		rows:     rows,
		sx:       float64(w-3) / (2 * boundary),
		sz:       float64(rows-3) / (2 * boundary),
	}
}

func (g grid) cell(x, z float64) (int, int) {
	col := 1 + int(math.Round((x+g.boundary)*g.sx))
	row := 1 + int(math.Round((z+g.boundary)*g.sz))
	return col, row
}

// Draw renders a frame.
func (v *Viewer) Draw(f controller.Frame) {
	w, h := v.screen.Size()
	v.screen.Clear()
	g := newGrid(w, h, v.driver.Boundary())

	edge := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	right, bottom := g.cell(g.boundary, g.boundary)
	right++
	bottom++
	for x := 0; x <= right && x < w; x++ {
		v.screen.SetContent(x, 0, '─', nil, edge)
		v.screen.SetContent(x, bottom, '─', nil, edge)
	}
	for y := 0; y <= bottom; y++ {
		v.screen.SetContent(0, y, '│', nil, edge)
		v.screen.SetContent(right, y, '│', nil, edge)
	}

	platform, _ := v.driver.Platform()
	px, py := g.cell(platform.X(), platform.Z())
	v.screen.SetContent(px, py, '◎', nil, tcell.StyleDefault.Foreground(tcell.ColorOlive))

	for i, l := range v.driver.Engine().Landmarks() {
		style := tcell.StyleDefault.Foreground(tcell.GetColor(l.Color)).Bold(true)
		if i < len(f.Cues) && f.Cues[i].ID == l.ID && f.Cues[i].Ring.Visible {
			ring := l.EnterRadius * f.Cues[i].Ring.Scale
			for k := 0; k < 12; k++ {
				a := float64(k) * math.Pi / 6
				rx, ry := g.cell(l.Position.X()+math.Sin(a)*ring, l.Position.Z()+math.Cos(a)*ring)
				v.screen.SetContent(rx, ry, '·', nil, style)
			}
		}
		lx, ly := g.cell(l.Position.X(), l.Position.Z())
		v.screen.SetContent(lx, ly, glyph(l.Label, l.ID), nil, style)
	}

	a := f.Avatar
	ax, ay := g.cell(a.Position.X(), a.Position.Z())
	avatar := tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	if f.Pose.Blinking {
		avatar = avatar.Dim(true)
	}
	v.screen.SetContent(ax, ay, heading(a.Facing), nil, avatar)

	status := fmt.Sprintf("pos %.1f,%.1f speed %.2f", a.Position.X(), a.Position.Z(), a.Speed())
	if rd, ok := f.Report.Reading(f.Nearest); ok {
		status += fmt.Sprintf("  nearest %s %.1f", f.Nearest, rd.Distance)
	}
	if f.NearPlatform {
		status += "  [e] projects"
	}
	v.drawText(0, g.rows, tcell.StyleDefault, status)

	v.mu.Lock()
	panel := v.panel
	v.mu.Unlock()
	if f.Gallery {
		v.drawText(0, g.rows+1, tcell.StyleDefault.Bold(true), "Project gallery  [esc] close")
	} else if panel != nil {
		v.drawText(0, g.rows+1, tcell.StyleDefault.Bold(true), panel.Title+"  [esc] close")
		v.drawText(0, g.rows+2, tcell.StyleDefault, panel.Body)
	}
}

func (v *Viewer) drawText(x, y int, style tcell.Style, text string) {
	w, _ := v.screen.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// heading picks the arrow closest to a facing angle.
func heading(facing float64) rune {
	i := int(math.Round(facing/(math.Pi/4))) % len(headings)
	if i < 0 {
		i += len(headings)
	}
	return headings[i]
}

func glyph(label, id string) rune {
	for _, s := range []string{label, id} {
		for _, r := range strings.ToUpper(s) {
			return r
		}
	}
	return '?'
}
