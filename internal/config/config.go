package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xnor99/netaudio/internal/protocol"
)

// Config represents the complete bridge configuration
type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Audio   AudioConfig   `yaml:"audio"`
	Network NetworkConfig `yaml:"network"`
	Logging LoggingConfig `yaml:"logging"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// ClientConfig identifies the process to the host audio subsystem
type ClientConfig struct {
	Name       string `yaml:"name"`
	SampleRate int    `yaml:"sample_rate"` // Hz, requested from the device
}

// AudioConfig sizes the buffers between the audio callback and the network loop
type AudioConfig struct {
	RingCapacity   int `yaml:"ring_capacity"`    // bytes, rounded up to a power of two
	MaxCycleFrames int `yaml:"max_cycle_frames"` // largest per-callback cycle the scratch holds
}

// NetworkConfig contains UDP socket tuning
type NetworkConfig struct {
	ReadBuffer  int `yaml:"read_buffer"`  // bytes, 0 keeps the system default
	WriteBuffer int `yaml:"write_buffer"` // bytes, 0 keeps the system default
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MonitorConfig contains the optional HTTP monitoring endpoint
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Default returns the configuration used when no file is given. The binary
// runs without any configuration file.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			Name:       "netaudio",
			SampleRate: 48000,
		},
		Audio: AudioConfig{
			RingCapacity:   16384,
			MaxCycleFrames: 8192,
		},
		Network: NetworkConfig{
			ReadBuffer:  1048576,
			WriteBuffer: 1048576,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Monitor: MonitorConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9090",
		},
	}
}

// Load reads and parses the configuration file. Values absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("client config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	return nil
}

// Validate validates client configuration
func (cl *ClientConfig) Validate() error {
	if cl.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if cl.SampleRate < 8000 || cl.SampleRate > 384000 {
		return fmt.Errorf("sample_rate must be between 8000 and 384000 Hz, got %d", cl.SampleRate)
	}

	return nil
}

// Validate validates audio buffer configuration
func (a *AudioConfig) Validate() error {
	if a.RingCapacity < protocol.PacketSize {
		return fmt.Errorf("ring_capacity must hold at least one %d-byte packet, got %d",
			protocol.PacketSize, a.RingCapacity)
	}

	if a.MaxCycleFrames < 1 {
		return fmt.Errorf("max_cycle_frames must be at least 1, got %d", a.MaxCycleFrames)
	}

	return nil
}

// Validate validates network configuration
func (n *NetworkConfig) Validate() error {
	if n.ReadBuffer < 0 {
		return fmt.Errorf("read_buffer cannot be negative, got %d", n.ReadBuffer)
	}

	if n.WriteBuffer < 0 {
		return fmt.Errorf("write_buffer cannot be negative, got %d", n.WriteBuffer)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	// Output is stdout, stderr or a file path; nothing to reject here.
	return nil
}

// Validate validates monitor configuration
func (m *MonitorConfig) Validate() error {
	if m.Enabled && m.Listen == "" {
		return fmt.Errorf("listen cannot be empty when the monitor is enabled")
	}

	return nil
}

// ScratchBytes returns the size of the interleave scratch buffer implied by
// the largest accepted cycle.
func (a *AudioConfig) ScratchBytes() int {
	return a.MaxCycleFrames * protocol.FrameBytes
}
