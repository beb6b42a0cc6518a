// Package scene provides the scene configuration: movement constants,
// landmarks, section content, and the optional collaborators.
// Settings are loaded from a JSON or YAML file layered over defaults.
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"chosenoffset.com/roam/internal/motion"
	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/proximity"
)

// Config holds all scene settings
type Config struct {
	// Avatar movement
	Motion MotionConfig `json:"motion" yaml:"motion"`

	// Secondary animation clock
	Animation AnimationConfig `json:"animation" yaml:"animation"`

	// Points of interest
	Landmarks []LandmarkConfig `json:"landmarks" yaml:"landmarks"`

	// Section text keyed by landmark id
	Sections map[string]overlay.Content `json:"sections" yaml:"sections"`

	// Origin platform that opens the project gallery
	Platform PlatformConfig `json:"platform" yaml:"platform"`

	// Websocket state feed
	Feed FeedConfig `json:"feed" yaml:"feed"`

	// Enter chime
	Audio AudioConfig `json:"audio" yaml:"audio"`
}

// MotionConfig defines movement constants
type MotionConfig struct {
	Speed             float64    `json:"speed" yaml:"speed"`                           // Impulse per held direction per tick
	Friction          float64    `json:"friction" yaml:"friction"`                     // Velocity decay per tick, in (0,1)
	Boundary          float64    `json:"boundary" yaml:"boundary"`                     // Half-extent of the walkable square
	Deadband          float64    `json:"deadband" yaml:"deadband"`                     // Minimum speed for heading updates
	NormalizeDiagonal bool       `json:"normalize_diagonal" yaml:"normalize_diagonal"` // Cap diagonal impulse at Speed
	DampWalls         bool       `json:"damp_walls" yaml:"damp_walls"`                 // Zero velocity along clamped axes
	Spawn             [3]float64 `json:"spawn" yaml:"spawn"`                           // Starting position
}

// AnimationConfig defines the animation clock
type AnimationConfig struct {
	TickSeconds float64 `json:"tick_seconds" yaml:"tick_seconds"` // Clock advance per tick (e.g., 0.016)
}

// LandmarkConfig describes one landmark
type LandmarkConfig struct {
	ID            string     `json:"id" yaml:"id" jsonschema:"required"`
	Label         string     `json:"label" yaml:"label"`
	Color         string     `json:"color" yaml:"color"` // Hex color, e.g. "#F38181"
	Position      [3]float64 `json:"position" yaml:"position"`
	EnterRadius   float64    `json:"enter_radius" yaml:"enter_radius"`     // Section opens inside this radius
	FalloffRadius float64    `json:"falloff_radius" yaml:"falloff_radius"` // Feedback fades to zero here
}

// PlatformConfig describes the clickable platform at the origin
type PlatformConfig struct {
	Position [3]float64 `json:"position" yaml:"position"`
	Radius   float64    `json:"radius" yaml:"radius"` // Interact key opens the gallery inside this radius
}

// FeedConfig defines the websocket feed
type FeedConfig struct {
	Addr         string `json:"addr" yaml:"addr"`                   // Listen address, empty disables the feed
	TickRate     int    `json:"tick_rate" yaml:"tick_rate"`         // Ticks per second in headless mode
	SendInterval int    `json:"send_interval" yaml:"send_interval"` // Broadcast every Nth tick
}

// AudioConfig defines the enter chime
type AudioConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	FrequencyHz float64 `json:"frequency_hz" yaml:"frequency_hz"`
	DurationMs  int     `json:"duration_ms" yaml:"duration_ms"`
	Volume      float64 `json:"volume" yaml:"volume"` // Gain in beep volume units (base 2)
}

// DefaultConfig returns the portfolio scene: four landmarks around the origin
func DefaultConfig() *Config {
	return &Config{
		Motion: MotionConfig{
			Speed:    0.04,
			Friction: 0.88,
			Boundary: 45,
			Deadband: 0.01,
			Spawn:    [3]float64{0, 0.5, 0},
		},
		Animation: AnimationConfig{
			TickSeconds: 0.016,
		},
		Landmarks: []LandmarkConfig{
			{ID: "projects", Label: "Projects", Color: "#FF6B6B", Position: [3]float64{-10, 0, -10}, EnterRadius: 2, FalloffRadius: 5},
			{ID: "experience", Label: "Experience", Color: "#4ECDC4", Position: [3]float64{10, 0, -10}, EnterRadius: 2, FalloffRadius: 5},
			{ID: "about", Label: "About Me", Color: "#95E1D3", Position: [3]float64{-10, 0, 10}, EnterRadius: 2, FalloffRadius: 5},
			{ID: "contact", Label: "Contact", Color: "#F38181", Position: [3]float64{10, 0, 10}, EnterRadius: 2, FalloffRadius: 5},
		},
		Sections: map[string]overlay.Content{
			"projects": {
				Title: "Projects",
				Body:  "Explore my portfolio of creative projects and technical solutions. Each project showcases different skills and technologies.",
			},
			"experience": {
				Title: "Experience",
				Body:  "My professional journey and the skills I've developed along the way. From internships to full-time roles.",
			},
			"about": {
				Title: "About Me",
				Body:  "Learn more about who I am, my passions, and what drives me in my work and life.",
			},
			"contact": {
				Title: "Contact",
				Body:  "Get in touch! I'm always open to discussing new opportunities and collaborations.",
			},
		},
		Platform: PlatformConfig{
			Radius: 2.5,
		},
		Feed: FeedConfig{
			TickRate:     60,
			SendInterval: 2,
		},
		Audio: AudioConfig{
			Enabled:     true,
			FrequencyHz: 880,
			DurationMs:  80,
			Volume:      -1,
		},
	}
}

// LoadConfig loads the scene config from a JSON or YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read scene config: %w", err)
	}

	config := DefaultConfig() // Start with defaults

	// The decoders reuse slice elements in place, so a shorter landmark list
	// would inherit fields from the defaults. Decode into an empty list and
	// fall back to the default landmarks only when the file has none.
	defaults := config.Landmarks
	config.Landmarks = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene config: %w", err)
	}
	if len(config.Landmarks) == 0 {
		config.Landmarks = defaults
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the settings that would break the simulation
func (c *Config) Validate() error {
	if err := c.MotionSettings().Validate(); err != nil {
		return err
	}
	if c.Animation.TickSeconds <= 0 {
		return fmt.Errorf("animation tick must be positive, got %v", c.Animation.TickSeconds)
	}
	if c.Feed.TickRate <= 0 {
		return fmt.Errorf("feed tick rate must be positive, got %d", c.Feed.TickRate)
	}
	if c.Feed.SendInterval <= 0 {
		return fmt.Errorf("feed send interval must be positive, got %d", c.Feed.SendInterval)
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// MotionSettings converts the movement section to integrator constants
func (c *Config) MotionSettings() motion.Config {
	return motion.Config{
		Speed:             c.Motion.Speed,
		Friction:          c.Motion.Friction,
		Boundary:          c.Motion.Boundary,
		Deadband:          c.Motion.Deadband,
		Spawn:             mgl64.Vec3(c.Motion.Spawn),
		NormalizeDiagonal: c.Motion.NormalizeDiagonal,
		DampWalls:         c.Motion.DampWalls,
	}
}

// Registry registers every configured landmark in file order
func (c *Config) Registry() (*proximity.Registry, error) {
	reg := proximity.NewRegistry()
	for _, lc := range c.Landmarks {
		if err := reg.Register(lc.Landmark()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Landmark converts the config entry to a proximity landmark
func (lc LandmarkConfig) Landmark() proximity.Landmark {
	return proximity.Landmark{
		ID:            lc.ID,
		Label:         lc.Label,
		Color:         lc.Color,
		Position:      mgl64.Vec3(lc.Position),
		EnterRadius:   lc.EnterRadius,
		FalloffRadius: lc.FalloffRadius,
	}
}

// PlatformPosition returns the platform anchor as a vector
func (c *Config) PlatformPosition() mgl64.Vec3 {
	return mgl64.Vec3(c.Platform.Position)
}
