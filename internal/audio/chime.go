// Package audio plays a short chime when a section or the gallery opens.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/scene"
)

// SampleRate is the output sample rate.
const SampleRate = beep.SampleRate(44100)

// Output receives finished streamers.
type Output interface {
	Play(s ...beep.Streamer)
}

type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }

// OpenSpeaker initializes the system speaker. It fails on machines without
// an audio device; callers should carry on silently.
func OpenSpeaker() (Output, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	return speakerOutput{}, nil
}

// CloseSpeaker releases the speaker opened by OpenSpeaker.
func CloseSpeaker() {
	speaker.Close()
}

// Chime turns overlay events into tones.
type Chime struct {
	out    Output
	freq   float64
	length time.Duration
	volume float64
	logger *zap.Logger

	mu     sync.Mutex
	failed bool // tone construction failed once; stay quiet afterwards
}

// NewChime creates a chime that plays on out.
func NewChime(cfg scene.AudioConfig, out Output, logger *zap.Logger) *Chime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chime{
		out:    out,
		freq:   cfg.FrequencyHz,
		length: time.Duration(cfg.DurationMs) * time.Millisecond,
		volume: cfg.Volume,
		logger: logger,
	}
}

// Tone returns one note at freq for the chime length.
func (c *Chime) Tone(freq float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(SampleRate, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v Hz tone: %w", freq, err)
	}
	return &effects.Volume{
		Streamer: beep.Take(SampleRate.N(c.length), sine),
		Base:     2,
		Volume:   c.volume,
	}, nil
}

// Streamer builds the chime for an event. A first visit rises a fifth,
// a revisit plays the single root note, and the gallery rises an octave.
func (c *Chime) Streamer(ev overlay.Event) (beep.Streamer, error) {
	var freqs []float64
	switch {
	case ev.Type == overlay.GalleryOpened:
		freqs = []float64{c.freq, c.freq * 2}
	case ev.Type == overlay.SectionOpened && ev.IsFirst:
		freqs = []float64{c.freq, c.freq * 1.5}
	case ev.Type == overlay.SectionOpened:
		freqs = []float64{c.freq}
	default:
		return nil, nil
	}

	notes := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		tone, err := c.Tone(f)
		if err != nil {
			return nil, err
		}
		notes = append(notes, tone)
	}
	return beep.Seq(notes...), nil
}

// HandleEvent plays the chime for ev. It is meant for overlay.OnEvent.
func (c *Chime) HandleEvent(ev overlay.Event) {
	c.mu.Lock()
	failed := c.failed
	c.mu.Unlock()
	if failed || c.out == nil {
		return
	}

	s, err := c.Streamer(ev)
	if err != nil {
		c.mu.Lock()
		c.failed = true
		c.mu.Unlock()
		c.logger.Warn("Chime disabled", zap.Error(err))
		return
	}
	if s == nil {
		return
	}
	c.out.Play(s)
}
