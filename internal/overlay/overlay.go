// Package overlay tracks which content section is on screen.
//
// It consumes the proximity engine's level-triggered enter notifications and
// turns them into discrete open/close events: repeat notifications for the
// section already shown are ignored, and a section the user dismissed stays
// closed until the avatar leaves its landmark and comes back.
package overlay

import (
	"sync"
)

// Content is the text shown for a section.
type Content struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// EventType is the kind of overlay change.
type EventType int

const (
	SectionOpened EventType = iota
	SectionClosed
	GalleryOpened
	GalleryClosed
)

// String returns the event name used on the wire.
func (t EventType) String() string {
	switch t {
	case SectionOpened:
		return "section_opened"
	case SectionClosed:
		return "section_closed"
	case GalleryOpened:
		return "gallery_opened"
	case GalleryClosed:
		return "gallery_closed"
	default:
		return "unknown"
	}
}

// Event is an overlay change.
type Event struct {
	Type       EventType
	ID         string
	Content    Content
	IsFirst    bool // first time this section was opened this session
	VisitCount int
}

// SectionState tracks one section over the session.
type SectionState struct {
	Visited    bool
	VisitCount int
	dismissed  bool // closed by the user while the avatar was still inside
}

// markVisited records an opening and reports whether it was the first.
func (s *SectionState) markVisited() bool {
	wasFirst := !s.Visited
	s.Visited = true
	s.VisitCount++
	return wasFirst
}

// Resolver checks that an id refers to a registered landmark.
type Resolver func(id string) bool

// GallerySection is the section hidden while the project gallery is open.
const GallerySection = "projects"

// Overlay is the section state machine.
type Overlay struct {
	mu       sync.Mutex
	contents map[string]Content
	states   map[string]*SectionState
	resolve  Resolver

	active  string
	gallery bool

	// OnEvent is called for every open/close, outside the lock.
	OnEvent func(Event)
}

// New creates an overlay over a content table. resolve may be nil, in which
// case any id with content is accepted.
func New(contents map[string]Content, resolve Resolver) *Overlay {
	o := &Overlay{
		contents: make(map[string]Content, len(contents)),
		states:   make(map[string]*SectionState),
		resolve:  resolve,
	}
	for id, c := range contents {
		o.contents[id] = c
	}
	return o
}

// Active returns the section on screen, or "" when none is.
func (o *Overlay) Active() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// GalleryOpen reports whether the project gallery is shown.
func (o *Overlay) GalleryOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gallery
}

// State returns a copy of a section's session state.
func (o *Overlay) State(id string) SectionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.states[id]; ok {
		return *s
	}
	return SectionState{}
}

// Sync consumes one tick's entered ids. It opens the first eligible section
// when nothing is shown, ignores repeats for the shown section, and clears
// the dismissal latch of every section the avatar has left.
func (o *Overlay) Sync(entered []string) {
	var events []Event

	o.mu.Lock()
	inside := make(map[string]bool, len(entered))
	for _, id := range entered {
		inside[id] = true
	}
	for id, s := range o.states {
		if !inside[id] {
			s.dismissed = false
		}
	}

	if o.active == "" {
		for _, id := range entered {
			if ev, ok := o.openLocked(id); ok {
				events = append(events, ev)
				break
			}
		}
	}
	o.mu.Unlock()

	o.emit(events)
}

// Show opens a section on request (a click, a remote command). It returns
// false, leaving the shown section in place, when id cannot be opened.
func (o *Overlay) Show(id string) bool {
	var events []Event

	o.mu.Lock()
	if o.active == id {
		o.mu.Unlock()
		return true
	}
	if !o.openableLocked(id) {
		o.mu.Unlock()
		return false
	}
	if o.active != "" {
		events = append(events, o.closeLocked(false))
	}
	ev, _ := o.openLocked(id)
	events = append(events, ev)
	o.mu.Unlock()

	o.emit(events)
	return true
}

// Close dismisses the shown section. The section will not reopen until the
// avatar leaves its landmark.
func (o *Overlay) Close() {
	o.mu.Lock()
	if o.active == "" {
		o.mu.Unlock()
		return
	}
	ev := o.closeLocked(true)
	o.mu.Unlock()

	o.emit([]Event{ev})
}

// OpenGallery shows the project gallery. The projects section is closed so
// the two panels never stack.
func (o *Overlay) OpenGallery() {
	var events []Event

	o.mu.Lock()
	if o.gallery {
		o.mu.Unlock()
		return
	}
	if o.active == GallerySection {
		events = append(events, o.closeLocked(true))
	}
	o.gallery = true
	events = append(events, Event{Type: GalleryOpened, ID: GallerySection})
	o.mu.Unlock()

	o.emit(events)
}

// CloseGallery hides the project gallery.
func (o *Overlay) CloseGallery() {
	o.mu.Lock()
	if !o.gallery {
		o.mu.Unlock()
		return
	}
	o.gallery = false
	o.mu.Unlock()

	o.emit([]Event{{Type: GalleryClosed, ID: GallerySection}})
}

// openableLocked reports whether id may be opened now. The resolver runs
// first so an unregistered id is reported even when it has no content.
func (o *Overlay) openableLocked(id string) bool {
	if o.resolve != nil && !o.resolve(id) {
		return false
	}
	if _, ok := o.contents[id]; !ok {
		return false
	}
	if o.gallery && id == GallerySection {
		return false
	}
	if s, ok := o.states[id]; ok && s.dismissed {
		return false
	}
	return true
}

func (o *Overlay) openLocked(id string) (Event, bool) {
	if !o.openableLocked(id) {
		return Event{}, false
	}
	content := o.contents[id]
	s := o.stateLocked(id)
	first := s.markVisited()
	o.active = id
	return Event{Type: SectionOpened, ID: id, Content: content, IsFirst: first, VisitCount: s.VisitCount}, true
}

func (o *Overlay) closeLocked(dismiss bool) Event {
	id := o.active
	s := o.stateLocked(id)
	if dismiss {
		s.dismissed = true
	}
	o.active = ""
	return Event{Type: SectionClosed, ID: id, VisitCount: s.VisitCount}
}

func (o *Overlay) stateLocked(id string) *SectionState {
	s, ok := o.states[id]
	if !ok {
		s = &SectionState{}
		o.states[id] = s
	}
	return s
}

func (o *Overlay) emit(events []Event) {
	if o.OnEvent == nil {
		return
	}
	for _, ev := range events {
		o.OnEvent(ev)
	}
}
