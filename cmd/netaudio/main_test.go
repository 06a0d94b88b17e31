package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectMode  string
		expectError bool
	}{
		{
			name:        "no arguments",
			args:        []string{},
			expectError: true,
		},
		{
			name:        "too many arguments",
			args:        []string{"127.0.0.1:4455", "127.0.0.1:4456", "127.0.0.1:4457"},
			expectError: true,
		},
		{
			name:       "one address selects receiver mode",
			args:       []string{"127.0.0.1:4455"},
			expectMode: modeReceiver,
		},
		{
			name:       "two addresses select sender mode",
			args:       []string{"127.0.0.1:0", "127.0.0.1:4455"},
			expectMode: modeSender,
		},
		{
			name:        "bind address without port",
			args:        []string{"127.0.0.1"},
			expectError: true,
		},
		{
			name:        "bind address with bad port",
			args:        []string{"127.0.0.1:notaport"},
			expectError: true,
		},
		{
			name:        "send address without port",
			args:        []string{"127.0.0.1:4455", "127.0.0.1"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, bind, send, err := parseArgs(tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for args %v, got none", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.expectMode {
				t.Errorf("mode = %q, want %q", mode, tt.expectMode)
			}
			if bind == nil {
				t.Error("bind address is nil")
			}
			if mode == modeSender && send == nil {
				t.Error("send address is nil in sender mode")
			}
			if mode == modeReceiver && send != nil {
				t.Errorf("send address = %v in receiver mode, want nil", send)
			}
		})
	}
}

func TestLoadConfigDefaultsWhenUnset(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Client.Name != "netaudio" {
		t.Errorf("client name = %q, want netaudio", cfg.Client.Name)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file, got none")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
client:
  name: bridge-a
  sample_rate: 44100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Client.Name != "bridge-a" {
		t.Errorf("client name = %q, want bridge-a", cfg.Client.Name)
	}
	if cfg.Client.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", cfg.Client.SampleRate)
	}
	// Unset sections keep their defaults.
	if cfg.Audio.RingCapacity != 16384 {
		t.Errorf("ring capacity = %d, want default 16384", cfg.Audio.RingCapacity)
	}
}
