package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration failed validation: %v", err)
	}

	if cfg.Client.Name != "netaudio" {
		t.Errorf("default client name = %q, want 'netaudio'", cfg.Client.Name)
	}
	if cfg.Audio.RingCapacity != 16384 {
		t.Errorf("default ring_capacity = %d, want 16384", cfg.Audio.RingCapacity)
	}
	if cfg.Monitor.Enabled {
		t.Error("monitor must be disabled by default")
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("default logging output = %q, want 'stderr'", cfg.Logging.Output)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:        "empty client name",
			mutate:      func(c *Config) { c.Client.Name = "" },
			expectError: true,
			errorMsg:    "name cannot be empty",
		},
		{
			name:        "sample rate too low",
			mutate:      func(c *Config) { c.Client.SampleRate = 4000 },
			expectError: true,
			errorMsg:    "sample_rate must be between 8000 and 384000",
		},
		{
			name:        "sample rate too high",
			mutate:      func(c *Config) { c.Client.SampleRate = 500000 },
			expectError: true,
			errorMsg:    "sample_rate must be between 8000 and 384000",
		},
		{
			name:        "ring smaller than a packet",
			mutate:      func(c *Config) { c.Audio.RingCapacity = 100 },
			expectError: true,
			errorMsg:    "ring_capacity must hold at least one 480-byte packet",
		},
		{
			name:        "zero max cycle frames",
			mutate:      func(c *Config) { c.Audio.MaxCycleFrames = 0 },
			expectError: true,
			errorMsg:    "max_cycle_frames must be at least 1",
		},
		{
			name:        "negative read buffer",
			mutate:      func(c *Config) { c.Network.ReadBuffer = -1 },
			expectError: true,
			errorMsg:    "read_buffer cannot be negative",
		},
		{
			name:        "negative write buffer",
			mutate:      func(c *Config) { c.Network.WriteBuffer = -1024 },
			expectError: true,
			errorMsg:    "write_buffer cannot be negative",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be 'json' or 'text'",
		},
		{
			name:   "file path as log output",
			mutate: func(c *Config) { c.Logging.Output = "/var/log/netaudio.log" },
		},
		{
			name: "monitor enabled without listen address",
			mutate: func(c *Config) {
				c.Monitor.Enabled = true
				c.Monitor.Listen = ""
			},
			expectError: true,
			errorMsg:    "listen cannot be empty",
		},
		{
			name: "monitor disabled without listen address",
			mutate: func(c *Config) {
				c.Monitor.Enabled = false
				c.Monitor.Listen = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing '%s', got nil", tt.errorMsg)
				} else if !contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestConfigLoad(t *testing.T) {
	t.Run("complete file", func(t *testing.T) {
		content := `client:
  name: bridge-a
  sample_rate: 44100
audio:
  ring_capacity: 32768
  max_cycle_frames: 4096
network:
  read_buffer: 524288
  write_buffer: 0
logging:
  level: debug
  format: json
  output: stdout
monitor:
  enabled: true
  listen: "127.0.0.1:9900"
`
		path := writeConfigFile(t, content)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Client.Name != "bridge-a" {
			t.Errorf("client name = %q, want 'bridge-a'", cfg.Client.Name)
		}
		if cfg.Client.SampleRate != 44100 {
			t.Errorf("sample_rate = %d, want 44100", cfg.Client.SampleRate)
		}
		if cfg.Audio.RingCapacity != 32768 {
			t.Errorf("ring_capacity = %d, want 32768", cfg.Audio.RingCapacity)
		}
		if cfg.Network.WriteBuffer != 0 {
			t.Errorf("write_buffer = %d, want 0", cfg.Network.WriteBuffer)
		}
		if !cfg.Monitor.Enabled || cfg.Monitor.Listen != "127.0.0.1:9900" {
			t.Errorf("monitor = %+v, want enabled on 127.0.0.1:9900", cfg.Monitor)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		content := `logging:
  level: warn
`
		path := writeConfigFile(t, content)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Logging.Level != "warn" {
			t.Errorf("level = %q, want 'warn'", cfg.Logging.Level)
		}
		if cfg.Client.Name != "netaudio" {
			t.Errorf("client name = %q, want default 'netaudio'", cfg.Client.Name)
		}
		if cfg.Audio.RingCapacity != 16384 {
			t.Errorf("ring_capacity = %d, want default 16384", cfg.Audio.RingCapacity)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if !contains(err.Error(), "failed to read config file") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "client: [not a mapping")
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for malformed yaml")
		}
		if !contains(err.Error(), "failed to parse config file") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		content := `audio:
  ring_capacity: 64
`
		path := writeConfigFile(t, content)
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !contains(err.Error(), "config validation failed") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestScratchBytes(t *testing.T) {
	a := AudioConfig{RingCapacity: 16384, MaxCycleFrames: 8192}
	if got := a.ScratchBytes(); got != 65536 {
		t.Errorf("ScratchBytes() = %d, want 65536", got)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > len(substr) && findSubstring(s, substr)))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
