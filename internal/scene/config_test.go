package scene

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/roam/internal/proximity"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	if len(config.Landmarks) != 4 {
		t.Fatalf("Expected 4 landmarks, got %d", len(config.Landmarks))
	}
	for _, lc := range config.Landmarks {
		if _, ok := config.Sections[lc.ID]; !ok {
			t.Errorf("Expected section content for landmark %q", lc.ID)
		}
	}

	if config.Motion.Spawn[1] != 0.5 {
		t.Errorf("Expected spawn height 0.5, got %v", config.Motion.Spawn[1])
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if config.Motion.Friction != 0.88 {
		t.Errorf("Expected default friction 0.88, got %v", config.Motion.Friction)
	}
}

func TestLoadConfigJSONOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "scene.json", `{
		"motion": {"speed": 0.05, "normalize_diagonal": true},
		"landmarks": [
			{"id": "blog", "label": "Blog", "position": [0, 0, 20], "enter_radius": 1.5, "falloff_radius": 4}
		]
	}`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Motion.Speed != 0.05 {
		t.Errorf("Expected speed 0.05, got %v", config.Motion.Speed)
	}
	if config.Motion.Friction != 0.88 {
		t.Errorf("Expected friction to keep its default, got %v", config.Motion.Friction)
	}
	if !config.Motion.NormalizeDiagonal {
		t.Error("Expected normalize_diagonal to be set")
	}

	if len(config.Landmarks) != 1 {
		t.Fatalf("Expected 1 landmark, got %d", len(config.Landmarks))
	}
	lm := config.Landmarks[0]
	if lm.ID != "blog" || lm.Color != "" {
		t.Errorf("Expected a fresh blog landmark, got %+v", lm)
	}
	if lm.Position != [3]float64{0, 0, 20} {
		t.Errorf("Expected position (0, 0, 20), got %v", lm.Position)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "scene.yaml", `
motion:
  boundary: 30
landmarks:
  - id: garden
    position: [5, 0, 5]
    enter_radius: 2
    falloff_radius: 6
sections:
  garden:
    title: Garden
    body: Flowers.
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Motion.Boundary != 30 {
		t.Errorf("Expected boundary 30, got %v", config.Motion.Boundary)
	}
	if config.Sections["garden"].Title != "Garden" {
		t.Errorf("Expected garden section, got %+v", config.Sections["garden"])
	}
	if _, ok := config.Sections["contact"]; !ok {
		t.Error("Expected default sections to be kept")
	}

	reg, err := config.Registry()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Expected 1 registered landmark, got %d", reg.Len())
	}
}

func TestLoadConfigRejectsBadLandmark(t *testing.T) {
	path := writeFile(t, "scene.json", `{
		"landmarks": [
			{"id": "a", "position": [0, 0, 0], "enter_radius": 5, "falloff_radius": 2}
		]
	}`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected an error for inverted radii")
	}
	if !errors.Is(err, proximity.ErrInvalidRadius) {
		t.Errorf("Expected ErrInvalidRadius, got %v", err)
	}
}

func TestLoadConfigRejectsBadFriction(t *testing.T) {
	path := writeFile(t, "scene.json", `{"motion": {"friction": 1.2}}`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected an error for friction outside (0,1)")
	}
}

func TestLoadConfigRejectsNonFiniteMotion(t *testing.T) {
	cases := map[string]string{
		"nan spawn":       "motion:\n  spawn: [.nan, 0.5, 0]\n",
		"nan deadband":    "motion:\n  deadband: .nan\n",
		"spawn off scene": "motion:\n  boundary: 10\n  spawn: [20, 0.5, 0]\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "scene.yaml", data)
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("Expected a validation error")
			}
		})
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeFile(t, "scene.json", `{"motion": `)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected a parse error")
	}
}

func TestSchemaDescribesLandmarks(t *testing.T) {
	data, err := SchemaJSON()
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected properties object, got %T", doc["properties"])
	}
	for _, key := range []string{"motion", "landmarks", "sections", "feed"} {
		if _, ok := props[key]; !ok {
			t.Errorf("Expected schema property %q", key)
		}
	}
}
