// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/opd-ai/go-strut/pkg/world"
)

// SandboxConfig contains configuration for a structure sandbox session
type SandboxConfig struct {
	World   WorldConfig   `json:"world"`
	Physics PhysicsConfig `json:"physics"`
	Editor  EditorConfig  `json:"editor"`
	Display DisplayConfig `json:"display"`
	Storage StorageConfig `json:"storage"`
	Audio   AudioConfig   `json:"audio"`
}

// WorldConfig contains simulation stepping configuration
type WorldConfig struct {
	Scale     float32 `json:"scale"`
	Substeps  int     `json:"substeps"`
	FrameRate int     `json:"frameRate"`
	// StartPaused opens the sandbox with the simulation stopped
	StartPaused bool `json:"startPaused"`
}

// PhysicsConfig contains the solver constants
type PhysicsConfig struct {
	Gravity            float32 `json:"gravity"`
	LinkStiffness      float32 `json:"linkStiffness"`
	RopeStiffness      float32 `json:"ropeStiffness"`
	SpringPositionGain float32 `json:"springPositionGain"`
	SpringVelocityGain float32 `json:"springVelocityGain"`
	RotorGain          float32 `json:"rotorGain"`
	MinDistance        float32 `json:"minDistance"`
}

// EditorConfig contains the defaults applied to newly placed parts
type EditorConfig struct {
	SpringStiffness float32 `json:"springStiffness"`
	HydraulicSpeed  float32 `json:"hydraulicSpeed"`
	RotorSpeed      float32 `json:"rotorSpeed"`
	// CooldownMillis is the repeat delay of held edit actions
	CooldownMillis int `json:"cooldownMillis"`
}

// DisplayConfig contains window and terminal front end configuration
type DisplayConfig struct {
	Renderer string  `json:"renderer"`
	Title    string  `json:"title"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Zoom     float32 `json:"zoom"`
	VSync    bool    `json:"vsync"`
}

// StorageConfig contains world persistence configuration
type StorageConfig struct {
	Path string `json:"path"`
	// AutosaveSeconds of zero disables autosave
	AutosaveSeconds       int    `json:"autosaveSeconds"`
	BreakerMaxFailures    uint32 `json:"breakerMaxFailures"`
	BreakerTimeoutSeconds int    `json:"breakerTimeoutSeconds"`
}

// AudioConfig contains sound cue configuration
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sampleRate"`
}

// Renderer names accepted by DisplayConfig.Renderer
const (
	RendererEngo     = "engo"
	RendererTerminal = "terminal"
)

// ToTuning converts the physics section to solver constants
func (p PhysicsConfig) ToTuning() world.Tuning {
	return world.Tuning{
		Gravity:            p.Gravity,
		LinkStiffness:      p.LinkStiffness,
		RopeStiffness:      p.RopeStiffness,
		SpringPositionGain: p.SpringPositionGain,
		SpringVelocityGain: p.SpringVelocityGain,
		RotorGain:          p.RotorGain,
		MinDistance:        p.MinDistance,
	}
}

// Cooldown returns the editor repeat delay
func (e EditorConfig) Cooldown() time.Duration {
	return time.Duration(e.CooldownMillis) * time.Millisecond
}

// AutosaveInterval returns the autosave period, zero when disabled
func (s StorageConfig) AutosaveInterval() time.Duration {
	return time.Duration(s.AutosaveSeconds) * time.Second
}

// BreakerTimeout returns how long the save breaker stays open
func (s StorageConfig) BreakerTimeout() time.Duration {
	return time.Duration(s.BreakerTimeoutSeconds) * time.Second
}

// FrameDuration returns the length of one simulation frame
func (w WorldConfig) FrameDuration() time.Duration {
	if w.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(w.FrameRate)
}

// LoadConfig loads a configuration from a file. Sections missing from the
// file keep their defaults.
func LoadConfig(path string) (*SandboxConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SandboxConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default sandbox configuration
func DefaultConfig() *SandboxConfig {
	tuning := world.DefaultTuning()
	return &SandboxConfig{
		World: WorldConfig{
			Scale:     1,
			Substeps:  16,
			FrameRate: 60,
		},
		Physics: PhysicsConfig{
			Gravity:            tuning.Gravity,
			LinkStiffness:      tuning.LinkStiffness,
			RopeStiffness:      tuning.RopeStiffness,
			SpringPositionGain: tuning.SpringPositionGain,
			SpringVelocityGain: tuning.SpringVelocityGain,
			RotorGain:          tuning.RotorGain,
			MinDistance:        tuning.MinDistance,
		},
		Editor: EditorConfig{
			SpringStiffness: 0.5,
			HydraulicSpeed:  0.5,
			RotorSpeed:      1,
			CooldownMillis:  150,
		},
		Display: DisplayConfig{
			Renderer: RendererEngo,
			Title:    "strut",
			Width:    1280,
			Height:   720,
			Zoom:     160,
			VSync:    true,
		},
		Storage: StorageConfig{
			Path:                  "world.bin",
			AutosaveSeconds:       30,
			BreakerMaxFailures:    3,
			BreakerTimeoutSeconds: 60,
		},
		Audio: AudioConfig{
			Enabled:    false,
			SampleRate: 44100,
		},
	}
}
