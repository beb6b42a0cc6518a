package terminal

import (
	"sort"
	"sync"
	"time"

	"chosenoffset.com/roam/internal/input"
)

// HoldTracker emulates held keys for terminals, which report key presses
// (and auto-repeat) but never releases. A key counts as held until no
// event for it has arrived within the timeout.
type HoldTracker struct {
	timeout time.Duration

	mu   sync.Mutex
	sink input.Sink
	seen map[string]time.Time
}

// NewHoldTracker creates a tracker. The timeout should exceed the
// terminal's initial auto-repeat delay, or a held key will stutter.
func NewHoldTracker(timeout time.Duration) *HoldTracker {
	return &HoldTracker{timeout: timeout, seen: make(map[string]time.Time)}
}

// Listen implements input.Source.
func (h *HoldTracker) Listen(sink input.Sink) func() {
	h.mu.Lock()
	h.sink = sink
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		h.sink = nil
		h.seen = make(map[string]time.Time)
		h.mu.Unlock()
	}
}

// Touch records a key event at now, pressing the key if it was not held.
func (h *HoldTracker) Touch(key string, now time.Time) {
	key = input.Normalize(key)
	h.mu.Lock()
	_, held := h.seen[key]
	h.seen[key] = now
	sink := h.sink
	h.mu.Unlock()

	if !held && sink != nil {
		sink.Press(key)
	}
}

// Expire releases every key not touched within the timeout before now.
func (h *HoldTracker) Expire(now time.Time) {
	h.mu.Lock()
	var expired []string
	for key, at := range h.seen {
		if now.Sub(at) > h.timeout {
			expired = append(expired, key)
			delete(h.seen, key)
		}
	}
	sink := h.sink
	h.mu.Unlock()

	if sink == nil {
		return
	}
	sort.Strings(expired)
	for _, key := range expired {
		sink.Release(key)
	}
}

// Held returns the keys currently considered held, sorted.
func (h *HoldTracker) Held() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.seen))
	for k := range h.seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
