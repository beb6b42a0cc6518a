package game

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/render"
)

// Game is the windowed viewer. Each Update runs one driver tick; Draw
// shows the latest frame from above.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Driver       *controller.Driver
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Keys         *KeyFeed
	Frame        controller.Frame
	Logger       *zap.Logger

	ctx     context.Context
	release func()

	// UI state, written from overlay events which may arrive off the
	// update goroutine.
	mu       sync.Mutex
	Messages []Message
	panel    *overlay.Content

	// Debug
	FrameCount int
}

// NewGame creates the viewer and attaches its key feed to the driver's
// sampler. The loop ends once ctx is cancelled.
func NewGame(ctx context.Context, driver *controller.Driver, r render.Renderer, im render.InputManager, width, height int, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	keys := NewKeyFeed()
	return &Game{
		ScreenWidth:  width,
		ScreenHeight: height,
		Driver:       driver,
		Renderer:     r,
		InputMgr:     im,
		Keys:         keys,
		Logger:       logger,
		ctx:          ctx,
		release:      driver.Sampler().Subscribe(keys),
	}
}

// Close detaches the key feed and releases its keys.
func (g *Game) Close() {
	g.release()
}

// Update handles one tick.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return render.ErrTerminated
	}

	// Delta time for timers (assuming 60 TPS)
	dt := 1.0 / 60.0

	g.Keys.Poll(g.InputMgr)

	// Respawn with R key
	if g.InputMgr.IsKeyJustPressed(render.KeyR) {
		g.Driver.Reset()
		g.ShowMessage("Respawned")
	}

	g.Frame = g.Driver.Tick()
	g.updateMessages(dt)
	g.FrameCount++
	return nil
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

// HandleEvent updates the section panel and messages for an overlay event.
func (g *Game) HandleEvent(ev overlay.Event) {
	switch ev.Type {
	case overlay.SectionOpened:
		content := ev.Content
		g.mu.Lock()
		g.panel = &content
		g.mu.Unlock()
		if ev.IsFirst {
			g.ShowMessage("Discovered " + content.Title)
		}
	case overlay.SectionClosed:
		g.mu.Lock()
		g.panel = nil
		g.mu.Unlock()
	case overlay.GalleryOpened:
		g.ShowMessage("Project gallery opened")
	case overlay.GalleryClosed:
		g.ShowMessage("Project gallery closed")
	}
}

// Panel returns the section text on screen, if any.
func (g *Game) Panel() (overlay.Content, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.panel == nil {
		return overlay.Content{}, false
	}
	return *g.panel, true
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.mu.Lock()
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	g.mu.Unlock()

	g.Logger.Debug("Message", zap.String("text", text))
}

func (g *Game) updateMessages(dt float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

func (g *Game) messages() []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Message(nil), g.Messages...)
}
