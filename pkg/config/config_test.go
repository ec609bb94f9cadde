package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/opd-ai/go-strut/pkg/world"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := ValidateConfig(config); err != nil {
		t.Fatalf("DefaultConfig is invalid: %v", err)
	}

	if config.World.Scale != 1 {
		t.Errorf("Expected Scale 1, got %v", config.World.Scale)
	}
	if config.World.Substeps != 16 {
		t.Errorf("Expected Substeps 16, got %d", config.World.Substeps)
	}
	if config.Display.Renderer != RendererEngo {
		t.Errorf("Expected renderer %q, got %q", RendererEngo, config.Display.Renderer)
	}
	if config.Audio.Enabled {
		t.Error("Expected audio to be disabled by default")
	}
	if config.Storage.AutosaveInterval() != 30*time.Second {
		t.Errorf("Expected autosave every 30s, got %v", config.Storage.AutosaveInterval())
	}
}

func TestPhysicsConfig_ToTuning(t *testing.T) {
	got := DefaultConfig().Physics.ToTuning()
	if diff := cmp.Diff(world.DefaultTuning(), got); diff != "" {
		t.Errorf("default physics section differs from default tuning (-want +got):\n%s", diff)
	}
}

func TestDurations(t *testing.T) {
	config := DefaultConfig()

	if got := config.Editor.Cooldown(); got != 150*time.Millisecond {
		t.Errorf("Cooldown() = %v", got)
	}
	if got := config.Storage.BreakerTimeout(); got != time.Minute {
		t.Errorf("BreakerTimeout() = %v", got)
	}
	if got := config.World.FrameDuration(); got != time.Second/60 {
		t.Errorf("FrameDuration() = %v", got)
	}
	config.World.FrameRate = 0
	if got := config.World.FrameDuration(); got != time.Second/60 {
		t.Errorf("FrameDuration() with zero rate = %v", got)
	}
}

func TestLoadConfig_Success(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.json")

	testConfig := DefaultConfig()
	testConfig.World.Substeps = 8
	testConfig.Physics.Gravity = 9.8
	testConfig.Display.Renderer = RendererTerminal
	testConfig.Storage.Path = "bridge.bin"

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(testConfig, loadedConfig); diff != "" {
		t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"physics": {"gravity": 2, "linkStiffness": 32, "ropeStiffness": 16, "springPositionGain": 8, "springVelocityGain": 512, "rotorGain": 64, "minDistance": 0.000001}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Physics.Gravity != 2 {
		t.Errorf("Expected Gravity 2, got %v", config.Physics.Gravity)
	}
	if config.Display.Width != DefaultConfig().Display.Width {
		t.Errorf("Expected default width, got %d", config.Display.Width)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig("/path/that/does/not/exist/config.json")

	if err == nil {
		t.Error("Expected error when loading non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when file not found, got non-nil")
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid_config.json")
	if err := os.WriteFile(configPath, []byte(`{"world": {"scale": 1, invalid json}`), 0o644); err != nil {
		t.Fatalf("Failed to write invalid JSON file: %v", err)
	}

	config, err := LoadConfig(configPath)

	if err == nil || config != nil {
		t.Fatalf("Expected parse failure, got config=%v err=%v", config, err)
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Expected parse error, got '%s'", err.Error())
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad_values.json")
	if err := os.WriteFile(configPath, []byte(`{"world": {"scale": -1, "substeps": 4, "frameRate": 60}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(configPath)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if validationErr.Field != "World.Scale" {
		t.Errorf("Expected error for World.Scale, got %s", validationErr.Field)
	}
}

func TestSaveConfig_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "saved.json")
	testConfig := DefaultConfig()
	testConfig.Audio.Enabled = true

	if err := SaveConfig(testConfig, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !loaded.Audio.Enabled {
		t.Error("Expected audio enabled after round trip")
	}
}

func TestSaveConfig_InvalidPath(t *testing.T) {
	err := SaveConfig(DefaultConfig(), filepath.Join(t.TempDir(), "missing", "dir", "config.json"))
	if err == nil {
		t.Error("Expected error when saving to a missing directory, got nil")
	}
}
