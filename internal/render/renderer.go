package render

import (
	"errors"
	"image"
	"image/color"
)

// ErrTerminated is returned from Game.Update to end the loop cleanly.
var ErrTerminated = errors.New("render: terminated")

// Renderer is the drawing interface the viewer uses. It abstracts the
// underlying graphics engine so the scene logic does not depend on it.
type Renderer interface {
	// Vector operations (for drawing shapes)
	FillCircle(dst Image, x, y, radius float32, clr color.Color)
	StrokeCircle(dst Image, x, y, radius float32, strokeWidth float32, clr color.Color)
	FillRect(dst Image, x, y, width, height float32, clr color.Color)
	StrokeRect(dst Image, x, y, width, height float32, strokeWidth float32, clr color.Color)
	StrokeLine(dst Image, x0, y0, x1, y1 float32, strokeWidth float32, clr color.Color)

	// Text operations
	DrawText(dst Image, text string, x, y int, clr color.Color, scale float64)
	MeasureText(text string, scale float64) (width, height int)
}

// Image represents a renderable image surface.
type Image interface {
	Bounds() image.Rectangle
	Size() (width, height int)
	Fill(clr color.Color)
}

// InputManager handles input from the user.
type InputManager interface {
	IsKeyPressed(key Key) bool
	IsKeyJustPressed(key Key) bool
	IsKeyJustReleased(key Key) bool
	IsFocused() bool
}

// Key represents a keyboard key.
type Key int

// Key constants for the keys the scene reacts to
const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyE // Interact key
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEscape
	KeyR // Respawn key
)

// Keys lists every key an input manager is polled for.
var Keys = []Key{KeyW, KeyA, KeyS, KeyD, KeyE, KeyUp, KeyDown, KeyLeft, KeyRight, KeyEscape, KeyR}

// Name returns the key name used by the input sampler.
func (k Key) Name() string {
	switch k {
	case KeyW:
		return "w"
	case KeyA:
		return "a"
	case KeyS:
		return "s"
	case KeyD:
		return "d"
	case KeyE:
		return "e"
	case KeyUp:
		return "arrowup"
	case KeyDown:
		return "arrowdown"
	case KeyLeft:
		return "arrowleft"
	case KeyRight:
		return "arrowright"
	case KeyEscape:
		return "escape"
	case KeyR:
		return "r"
	default:
		return ""
	}
}

// Game represents the game interface that the engine will call.
type Game interface {
	// Update updates the scene. It is called every tick (60 times per second).
	Update() error

	// Draw draws the screen. It is called every frame.
	Draw(screen Image)

	// Layout accepts the outside size (e.g., window size) and returns the logical screen size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine represents the engine that manages the loop and window.
type Engine interface {
	SetWindowSize(width, height int)
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)
	SetTPS(tps int)

	// RunGame runs the loop with the provided game.
	// This is a blocking call that runs until the game ends.
	RunGame(game Game) error
}
