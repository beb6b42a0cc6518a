package input

import "sync"

// Sink receives key transitions.
type Sink interface {
	Press(key string)
	Release(key string)
}

// Source is anything that produces key transitions: a window poller, a
// terminal event loop, a websocket client. Listen starts delivering to sink
// and returns a function that stops delivery.
type Source interface {
	Listen(sink Sink) (stop func())
}

// Sampler coalesces asynchronous key transitions into a held-key set.
// Writes may arrive from any goroutine; the tick reads a Snapshot.
type Sampler struct {
	mu   sync.RWMutex
	held State
}

// NewSampler creates an empty sampler.
func NewSampler() *Sampler {
	return &Sampler{held: make(State)}
}

// Press marks a key as held.
func (s *Sampler) Press(key string) {
	key = Normalize(key)
	if key == "" {
		return
	}
	s.mu.Lock()
	s.held[key] = true
	s.mu.Unlock()
}

// Release marks a key as no longer held.
func (s *Sampler) Release(key string) {
	key = Normalize(key)
	if key == "" {
		return
	}
	s.mu.Lock()
	s.held[key] = false
	s.mu.Unlock()
}

// Reset drops every held key, e.g. when the window loses focus.
func (s *Sampler) Reset() {
	s.mu.Lock()
	s.held = make(State)
	s.mu.Unlock()
}

// Snapshot returns a copy of the held-key set for one tick.
func (s *Sampler) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held.Clone()
}

// Subscribe attaches a source to the sampler. The returned release function
// stops the source and lets go of every key that source still holds, so a
// disconnected client cannot leave the avatar walking. Calling release more
// than once is a no-op.
func (s *Sampler) Subscribe(src Source) (release func()) {
	sub := &subscription{sampler: s, held: make(map[string]bool)}
	stop := src.Listen(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			if stop != nil {
				stop()
			}
			sub.drain()
		})
	}
}

// subscription tracks which keys one source is holding.
type subscription struct {
	sampler *Sampler

	mu     sync.Mutex
	held   map[string]bool
	closed bool
}

// Press and Release hold sub.mu across the sampler write so a concurrent
// drain cannot run between the closed check and the write.
func (sub *subscription) Press(key string) {
	key = Normalize(key)
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.held[key] = true
	sub.sampler.Press(key)
}

func (sub *subscription) Release(key string) {
	key = Normalize(key)
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	delete(sub.held, key)
	sub.sampler.Release(key)
}

func (sub *subscription) drain() {
	sub.mu.Lock()
	sub.closed = true
	keys := make([]string, 0, len(sub.held))
	for k := range sub.held {
		keys = append(keys, k)
	}
	sub.held = nil
	sub.mu.Unlock()

	for _, k := range keys {
		sub.sampler.Release(k)
	}
}

// FuncSource adapts a plain function to Source. The function receives the
// sink and returns its own stop function.
type FuncSource func(sink Sink) (stop func())

// Listen implements Source.
func (f FuncSource) Listen(sink Sink) func() {
	return f(sink)
}
