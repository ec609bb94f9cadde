// pkg/config/env_config_test.go
package config

import (
	"errors"
	"math"
	"os"
	"testing"
	"time"
)

// clearStrutEnv unsets every override for the duration of the test
func clearStrutEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvWorldPath, EnvScale, EnvSubsteps, EnvFrameRate, EnvGravity, EnvRenderer,
		EnvWidth, EnvHeight, EnvZoom, EnvAutosaveInterval, EnvAudio, EnvStartPaused,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		clearStrutEnv(t)

		config, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}
		if config.Storage.Path != "world.bin" {
			t.Errorf("Expected Path 'world.bin', got '%s'", config.Storage.Path)
		}
		if config.World.Substeps != 16 {
			t.Errorf("Expected Substeps 16, got %d", config.World.Substeps)
		}
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		clearStrutEnv(t)
		t.Setenv(EnvWorldPath, "/tmp/crane.bin")
		t.Setenv(EnvScale, "2.5")
		t.Setenv(EnvSubsteps, "32")
		t.Setenv(EnvFrameRate, "120")
		t.Setenv(EnvGravity, "9.5")
		t.Setenv(EnvRenderer, RendererTerminal)
		t.Setenv(EnvWidth, "800")
		t.Setenv(EnvHeight, "600")
		t.Setenv(EnvZoom, "40")
		t.Setenv(EnvAutosaveInterval, "2m")
		t.Setenv(EnvAudio, "true")
		t.Setenv(EnvStartPaused, "1")

		config, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}

		if config.Storage.Path != "/tmp/crane.bin" {
			t.Errorf("Expected Path '/tmp/crane.bin', got '%s'", config.Storage.Path)
		}
		if config.World.Scale != 2.5 {
			t.Errorf("Expected Scale 2.5, got %v", config.World.Scale)
		}
		if config.World.Substeps != 32 {
			t.Errorf("Expected Substeps 32, got %d", config.World.Substeps)
		}
		if config.World.FrameRate != 120 {
			t.Errorf("Expected FrameRate 120, got %d", config.World.FrameRate)
		}
		if config.Physics.Gravity != 9.5 {
			t.Errorf("Expected Gravity 9.5, got %v", config.Physics.Gravity)
		}
		if config.Display.Renderer != RendererTerminal {
			t.Errorf("Expected terminal renderer, got %q", config.Display.Renderer)
		}
		if config.Display.Width != 800 || config.Display.Height != 600 {
			t.Errorf("Expected 800x600, got %dx%d", config.Display.Width, config.Display.Height)
		}
		if config.Display.Zoom != 40 {
			t.Errorf("Expected Zoom 40, got %v", config.Display.Zoom)
		}
		if config.Storage.AutosaveSeconds != 120 {
			t.Errorf("Expected AutosaveSeconds 120, got %d", config.Storage.AutosaveSeconds)
		}
		if !config.Audio.Enabled {
			t.Error("Expected audio enabled")
		}
		if !config.World.StartPaused {
			t.Error("Expected StartPaused")
		}
	})

	t.Run("InvalidOverrideRejected", func(t *testing.T) {
		clearStrutEnv(t)
		t.Setenv(EnvRenderer, "opengl")

		_, err := LoadConfigFromEnv()
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != "Display.Renderer" {
			t.Errorf("Expected Display.Renderer validation error, got %v", err)
		}
	})
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	clearStrutEnv(t)
	t.Setenv(EnvSubsteps, "4")
	t.Setenv(EnvGravity, "not-a-number")

	config := DefaultConfig()
	config.Physics.Gravity = 3
	config.Storage.Path = "from-file.bin"

	if err := ApplyEnvironmentOverrides(config); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
	}

	if config.World.Substeps != 4 {
		t.Errorf("Expected Substeps 4, got %d", config.World.Substeps)
	}
	if config.Physics.Gravity != 3 {
		t.Errorf("Expected unparsable override to keep Gravity 3, got %v", config.Physics.Gravity)
	}
	if config.Storage.Path != "from-file.bin" {
		t.Errorf("Expected unset override to keep Path, got '%s'", config.Storage.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *SandboxConfig)
		expectError bool
		errorField  string
	}{
		{"ValidConfig", func(c *SandboxConfig) {}, false, ""},
		{"ZeroScale", func(c *SandboxConfig) { c.World.Scale = 0 }, true, "World.Scale"},
		{"NaNScale", func(c *SandboxConfig) { c.World.Scale = float32(math.NaN()) }, true, "World.Scale"},
		{"ZeroSubsteps", func(c *SandboxConfig) { c.World.Substeps = 0 }, true, "World.Substeps"},
		{"FrameRateTooHigh", func(c *SandboxConfig) { c.World.FrameRate = 241 }, true, "World.FrameRate"},
		{"InfiniteGravity", func(c *SandboxConfig) { c.Physics.Gravity = float32(math.Inf(-1)) }, true, "Physics.Gravity"},
		{"NegativeGravityAllowed", func(c *SandboxConfig) { c.Physics.Gravity = -6 }, false, ""},
		{"NegativeRopeStiffness", func(c *SandboxConfig) { c.Physics.RopeStiffness = -1 }, true, "Physics.RopeStiffness"},
		{"ZeroMinDistance", func(c *SandboxConfig) { c.Physics.MinDistance = 0 }, true, "Physics.MinDistance"},
		{"ZeroSpringStiffness", func(c *SandboxConfig) { c.Editor.SpringStiffness = 0 }, true, "Editor.SpringStiffness"},
		{"ZeroRotorSpeed", func(c *SandboxConfig) { c.Editor.RotorSpeed = 0 }, true, "Editor.RotorSpeed"},
		{"NegativeCooldown", func(c *SandboxConfig) { c.Editor.CooldownMillis = -1 }, true, "Editor.CooldownMillis"},
		{"UnknownRenderer", func(c *SandboxConfig) { c.Display.Renderer = "vulkan" }, true, "Display.Renderer"},
		{"TinyWindow", func(c *SandboxConfig) { c.Display.Width = 10 }, true, "Display.Width"},
		{"HugeWindow", func(c *SandboxConfig) { c.Display.Height = 10000 }, true, "Display.Height"},
		{"ZeroZoom", func(c *SandboxConfig) { c.Display.Zoom = 0 }, true, "Display.Zoom"},
		{"EmptyPath", func(c *SandboxConfig) { c.Storage.Path = "" }, true, "Storage.Path"},
		{"AutosaveDisabled", func(c *SandboxConfig) { c.Storage.AutosaveSeconds = 0 }, false, ""},
		{"NegativeAutosave", func(c *SandboxConfig) { c.Storage.AutosaveSeconds = -5 }, true, "Storage.AutosaveSeconds"},
		{"ZeroBreakerFailures", func(c *SandboxConfig) { c.Storage.BreakerMaxFailures = 0 }, true, "Storage.BreakerMaxFailures"},
		{"ZeroBreakerTimeout", func(c *SandboxConfig) { c.Storage.BreakerTimeoutSeconds = 0 }, true, "Storage.BreakerTimeoutSeconds"},
		{"LowSampleRate", func(c *SandboxConfig) { c.Audio.SampleRate = 100 }, true, "Audio.SampleRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := ValidateConfig(config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected validation error, but got none")
				} else if validationErr, ok := err.(*ValidationError); ok {
					if validationErr.Field != tt.errorField {
						t.Errorf("Expected error for field '%s', got error for field '%s'", tt.errorField, validationErr.Field)
					}
				} else {
					t.Errorf("Expected ValidationError, got %T: %v", err, err)
				}
			} else if err != nil {
				t.Errorf("Expected no validation error, but got: %v", err)
			}
		})
	}

	if err := ValidateConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestGetEnvHelperFunctions(t *testing.T) {
	t.Setenv("TEST_STRING", "test_value")
	if result := getEnvOrDefault("TEST_STRING", "default"); result != "test_value" {
		t.Errorf("getEnvOrDefault: expected 'test_value', got '%s'", result)
	}
	os.Unsetenv("STRUT_TEST_NONEXISTENT")
	if result := getEnvOrDefault("STRUT_TEST_NONEXISTENT", "default"); result != "default" {
		t.Errorf("getEnvOrDefault: expected 'default', got '%s'", result)
	}

	t.Setenv("TEST_INT", "42")
	if result := getEnvAsIntOrDefault("TEST_INT", 10); result != 42 {
		t.Errorf("getEnvAsIntOrDefault: expected 42, got %d", result)
	}
	t.Setenv("TEST_INT", "invalid")
	if result := getEnvAsIntOrDefault("TEST_INT", 10); result != 10 {
		t.Errorf("getEnvAsIntOrDefault with invalid value: expected 10, got %d", result)
	}

	t.Setenv("TEST_BOOL", "true")
	if result := getEnvAsBoolOrDefault("TEST_BOOL", false); result != true {
		t.Errorf("getEnvAsBoolOrDefault: expected true, got %v", result)
	}
	t.Setenv("TEST_BOOL", "invalid")
	if result := getEnvAsBoolOrDefault("TEST_BOOL", false); result != false {
		t.Errorf("getEnvAsBoolOrDefault with invalid value: expected false, got %v", result)
	}

	t.Setenv("TEST_FLOAT", "3.14")
	if result := getEnvAsFloatOrDefault("TEST_FLOAT", 1.0); result != 3.14 {
		t.Errorf("getEnvAsFloatOrDefault: expected 3.14, got %f", result)
	}
	t.Setenv("TEST_FLOAT", "invalid")
	if result := getEnvAsFloatOrDefault("TEST_FLOAT", 1.0); result != 1.0 {
		t.Errorf("getEnvAsFloatOrDefault with invalid value: expected 1.0, got %f", result)
	}

	t.Setenv("TEST_DURATION", "5s")
	if result := getEnvAsDurationOrDefault("TEST_DURATION", time.Second); result != 5*time.Second {
		t.Errorf("getEnvAsDurationOrDefault: expected 5s, got %v", result)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if result := getEnvAsDurationOrDefault("TEST_DURATION", time.Second); result != time.Second {
		t.Errorf("getEnvAsDurationOrDefault with invalid value: expected 1s, got %v", result)
	}
}
