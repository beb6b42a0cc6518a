package game

import (
	"sync"

	"chosenoffset.com/roam/internal/input"
	"chosenoffset.com/roam/internal/render"
)

// KeyFeed turns polled key transitions into press and release events. It
// is an input.Source; attach it with Sampler.Subscribe.
type KeyFeed struct {
	mu      sync.Mutex
	sink    input.Sink
	focused bool
}

// NewKeyFeed creates a feed that assumes the window starts focused.
func NewKeyFeed() *KeyFeed {
	return &KeyFeed{focused: true}
}

// Listen implements input.Source.
func (f *KeyFeed) Listen(sink input.Sink) func() {
	f.mu.Lock()
	f.sink = sink
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.sink = nil
		f.mu.Unlock()
	}
}

// Poll reads this tick's transitions from the input manager. Losing focus
// releases every key, since the window will not see the key-up events.
func (f *KeyFeed) Poll(im render.InputManager) {
	f.mu.Lock()
	sink := f.sink
	wasFocused := f.focused
	f.focused = im.IsFocused()
	focused := f.focused
	f.mu.Unlock()

	if sink == nil {
		return
	}

	if !focused {
		if wasFocused {
			for _, k := range render.Keys {
				sink.Release(k.Name())
			}
		}
		return
	}

	for _, k := range render.Keys {
		switch {
		case im.IsKeyJustPressed(k):
			sink.Press(k.Name())
		case im.IsKeyJustReleased(k):
			sink.Release(k.Name())
		case !wasFocused && im.IsKeyPressed(k):
			sink.Press(k.Name())
		}
	}
}
