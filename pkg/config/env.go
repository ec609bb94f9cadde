// pkg/config/env.go
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvWorldPath        = "STRUT_WORLD_PATH"
	EnvScale            = "STRUT_SCALE"
	EnvSubsteps         = "STRUT_SUBSTEPS"
	EnvFrameRate        = "STRUT_FRAME_RATE"
	EnvGravity          = "STRUT_GRAVITY"
	EnvRenderer         = "STRUT_RENDERER"
	EnvWidth            = "STRUT_WIDTH"
	EnvHeight           = "STRUT_HEIGHT"
	EnvZoom             = "STRUT_ZOOM"
	EnvAutosaveInterval = "STRUT_AUTOSAVE_INTERVAL"
	EnvAudio            = "STRUT_AUDIO"
	EnvStartPaused      = "STRUT_START_PAUSED"
)

// ValidationError reports a configuration field outside its allowed range
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s (value: %v): %s", e.Field, e.Value, e.Message)
}

// LoadConfigFromEnv returns the default configuration with environment
// overrides applied
func LoadConfigFromEnv() (*SandboxConfig, error) {
	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnvironmentOverrides overwrites fields of config with any STRUT_*
// variables that are set and parse, then validates the result
func ApplyEnvironmentOverrides(config *SandboxConfig) error {
	config.Storage.Path = getEnvOrDefault(EnvWorldPath, config.Storage.Path)
	config.World.Scale = float32(getEnvAsFloatOrDefault(EnvScale, float64(config.World.Scale)))
	config.World.Substeps = getEnvAsIntOrDefault(EnvSubsteps, config.World.Substeps)
	config.World.FrameRate = getEnvAsIntOrDefault(EnvFrameRate, config.World.FrameRate)
	config.World.StartPaused = getEnvAsBoolOrDefault(EnvStartPaused, config.World.StartPaused)
	config.Physics.Gravity = float32(getEnvAsFloatOrDefault(EnvGravity, float64(config.Physics.Gravity)))
	config.Display.Renderer = getEnvOrDefault(EnvRenderer, config.Display.Renderer)
	config.Display.Width = getEnvAsIntOrDefault(EnvWidth, config.Display.Width)
	config.Display.Height = getEnvAsIntOrDefault(EnvHeight, config.Display.Height)
	config.Display.Zoom = float32(getEnvAsFloatOrDefault(EnvZoom, float64(config.Display.Zoom)))
	config.Audio.Enabled = getEnvAsBoolOrDefault(EnvAudio, config.Audio.Enabled)

	autosave := getEnvAsDurationOrDefault(EnvAutosaveInterval, config.Storage.AutosaveInterval())
	config.Storage.AutosaveSeconds = int(autosave / time.Second)

	return ValidateConfig(config)
}

// ValidateConfig checks every section and returns the first violation as a
// *ValidationError
func ValidateConfig(config *SandboxConfig) error {
	if config == nil {
		return &ValidationError{Field: "config", Value: nil, Message: "configuration is nil"}
	}

	checks := []func(*SandboxConfig) error{
		validateWorld,
		validatePhysics,
		validateEditor,
		validateDisplay,
		validateStorage,
		validateAudio,
	}
	for _, check := range checks {
		if err := check(config); err != nil {
			return err
		}
	}
	return nil
}

func validateWorld(c *SandboxConfig) error {
	if !finite(c.World.Scale) || c.World.Scale <= 0 || c.World.Scale > 100 {
		return &ValidationError{Field: "World.Scale", Value: c.World.Scale, Message: "must be in (0, 100]"}
	}
	if c.World.Substeps < 1 || c.World.Substeps > 256 {
		return &ValidationError{Field: "World.Substeps", Value: c.World.Substeps, Message: "must be between 1 and 256"}
	}
	if c.World.FrameRate < 1 || c.World.FrameRate > 240 {
		return &ValidationError{Field: "World.FrameRate", Value: c.World.FrameRate, Message: "must be between 1 and 240"}
	}
	return nil
}

func validatePhysics(c *SandboxConfig) error {
	p := c.Physics
	if !finite(p.Gravity) {
		return &ValidationError{Field: "Physics.Gravity", Value: p.Gravity, Message: "must be finite"}
	}
	gains := []struct {
		field string
		value float32
	}{
		{"Physics.LinkStiffness", p.LinkStiffness},
		{"Physics.RopeStiffness", p.RopeStiffness},
		{"Physics.SpringPositionGain", p.SpringPositionGain},
		{"Physics.SpringVelocityGain", p.SpringVelocityGain},
		{"Physics.RotorGain", p.RotorGain},
	}
	for _, g := range gains {
		if !finite(g.value) || g.value < 0 {
			return &ValidationError{Field: g.field, Value: g.value, Message: "must be finite and non-negative"}
		}
	}
	if !finite(p.MinDistance) || p.MinDistance <= 0 {
		return &ValidationError{Field: "Physics.MinDistance", Value: p.MinDistance, Message: "must be positive"}
	}
	return nil
}

func validateEditor(c *SandboxConfig) error {
	e := c.Editor
	if !finite(e.SpringStiffness) || e.SpringStiffness <= 0 {
		return &ValidationError{Field: "Editor.SpringStiffness", Value: e.SpringStiffness, Message: "must be positive"}
	}
	if !finite(e.HydraulicSpeed) {
		return &ValidationError{Field: "Editor.HydraulicSpeed", Value: e.HydraulicSpeed, Message: "must be finite"}
	}
	if !finite(e.RotorSpeed) || e.RotorSpeed == 0 {
		return &ValidationError{Field: "Editor.RotorSpeed", Value: e.RotorSpeed, Message: "must be finite and non-zero"}
	}
	if e.CooldownMillis < 0 || e.CooldownMillis > 10000 {
		return &ValidationError{Field: "Editor.CooldownMillis", Value: e.CooldownMillis, Message: "must be between 0 and 10000"}
	}
	return nil
}

func validateDisplay(c *SandboxConfig) error {
	d := c.Display
	if d.Renderer != RendererEngo && d.Renderer != RendererTerminal {
		return &ValidationError{Field: "Display.Renderer", Value: d.Renderer, Message: "must be engo or terminal"}
	}
	if d.Width < 64 || d.Width > 8192 {
		return &ValidationError{Field: "Display.Width", Value: d.Width, Message: "must be between 64 and 8192"}
	}
	if d.Height < 64 || d.Height > 8192 {
		return &ValidationError{Field: "Display.Height", Value: d.Height, Message: "must be between 64 and 8192"}
	}
	if !finite(d.Zoom) || d.Zoom <= 0 {
		return &ValidationError{Field: "Display.Zoom", Value: d.Zoom, Message: "must be positive"}
	}
	return nil
}

func validateStorage(c *SandboxConfig) error {
	s := c.Storage
	if s.Path == "" {
		return &ValidationError{Field: "Storage.Path", Value: s.Path, Message: "cannot be empty"}
	}
	if s.AutosaveSeconds < 0 {
		return &ValidationError{Field: "Storage.AutosaveSeconds", Value: s.AutosaveSeconds, Message: "cannot be negative"}
	}
	if s.BreakerMaxFailures < 1 || s.BreakerMaxFailures > 100 {
		return &ValidationError{Field: "Storage.BreakerMaxFailures", Value: s.BreakerMaxFailures, Message: "must be between 1 and 100"}
	}
	if s.BreakerTimeoutSeconds < 1 || s.BreakerTimeoutSeconds > 3600 {
		return &ValidationError{Field: "Storage.BreakerTimeoutSeconds", Value: s.BreakerTimeoutSeconds, Message: "must be between 1 and 3600"}
	}
	return nil
}

func validateAudio(c *SandboxConfig) error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return &ValidationError{Field: "Audio.SampleRate", Value: c.Audio.SampleRate, Message: "must be between 8000 and 192000"}
	}
	return nil
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
