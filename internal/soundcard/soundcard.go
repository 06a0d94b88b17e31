package soundcard

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/xnor99/netaudio/internal/protocol"
)

// Control is returned by a ProcessFunc to tell the host whether to keep
// invoking it.
type Control uint8

const (
	// Continue keeps the callback registered.
	Continue Control = iota
	// Quit asks the host to stop invoking the callback. The device is
	// stopped asynchronously; the rest of the process keeps running.
	Quit
)

// ProcessFunc handles one cycle of equal-length left and right sample
// buffers: capture callbacks read from them, playback callbacks fill them.
// It runs on the device thread and must not block, allocate or lock.
type ProcessFunc func(left, right []float32) Control

// Config describes the connection to the host audio subsystem.
type Config struct {
	ClientName     string
	SampleRate     uint32 // requested rate; the device may negotiate another
	MaxCycleFrames int    // largest cycle handed to a ProcessFunc in one call
}

// Card is a connection to the host audio subsystem driving at most one
// capture or playback device.
type Card struct {
	cfg    Config
	logger *slog.Logger
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	// port scratch handed to the ProcessFunc, allocated once at connect
	left  []float32
	right []float32

	stopped atomic.Bool
	stopCh  chan struct{} // closed when the callback returns Quit
	closeCh chan struct{} // closed by Close
	closed  bool
}

// Connect initializes the host audio context for the platform backend.
func Connect(cfg Config, logger *slog.Logger) (*Card, error) {
	return connect([]malgo.Backend{platformBackend()}, cfg, logger)
}

func connect(backends []malgo.Backend, cfg Config, logger *slog.Logger) (*Card, error) {
	if cfg.MaxCycleFrames < 1 {
		return nil, fmt.Errorf("max cycle frames must be at least 1, got %d", cfg.MaxCycleFrames)
	}

	ctx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		logger.Debug("Host audio subsystem message",
			slog.String("client", cfg.ClientName),
			slog.String("message", strings.TrimSpace(message)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host audio subsystem: %w", err)
	}

	return &Card{
		cfg:     cfg,
		logger:  logger,
		ctx:     ctx,
		left:    make([]float32, cfg.MaxCycleFrames),
		right:   make([]float32, cfg.MaxCycleFrames),
		stopCh:  make(chan struct{}),
		closeCh: make(chan struct{}),
	}, nil
}

func platformBackend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// StartCapture opens the default stereo capture device and begins invoking
// process once per cycle with the captured samples.
func (c *Card) StartCapture(process ProcessFunc) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = protocol.Channels
	deviceConfig.SampleRate = c.cfg.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, framecount uint32) {
			c.onCapture(process, pInput, int(framecount))
		},
		Stop: c.onDeviceStop,
	}

	return c.startDevice(deviceConfig, callbacks)
}

// StartPlayback opens the default stereo playback device and begins invoking
// process once per cycle to fill the output.
func (c *Card) StartPlayback(process ProcessFunc) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = protocol.Channels
	deviceConfig.SampleRate = c.cfg.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, framecount uint32) {
			c.onPlayback(process, pOutput, int(framecount))
		},
		Stop: c.onDeviceStop,
	}

	return c.startDevice(deviceConfig, callbacks)
}

func (c *Card) startDevice(deviceConfig malgo.DeviceConfig, callbacks malgo.DeviceCallbacks) error {
	if c.device != nil {
		return fmt.Errorf("audio device already started")
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize audio device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	c.device = device
	go c.stopWatcher()

	return nil
}

// SampleRate returns the rate the device actually runs at, which may differ
// from the requested one.
func (c *Card) SampleRate() uint32 {
	if c.device == nil {
		return 0
	}
	return c.device.SampleRate()
}

// onCapture splits the interleaved device buffer into the port scratch and
// hands it to process, chunking cycles larger than the scratch.
func (c *Card) onCapture(process ProcessFunc, pInput []byte, frames int) {
	if c.stopped.Load() {
		return
	}
	for offset := 0; offset < frames; offset += c.cfg.MaxCycleFrames {
		n := frames - offset
		if n > c.cfg.MaxCycleFrames {
			n = c.cfg.MaxCycleFrames
		}
		left, right := c.left[:n], c.right[:n]
		protocol.DeinterleaveBytes(left, right, pInput[offset*protocol.FrameBytes:(offset+n)*protocol.FrameBytes])
		if process(left, right) == Quit {
			c.requestStop()
			return
		}
	}
}

// onPlayback asks process to fill the port scratch, then interleaves it into
// the device buffer. A stopped or quitting callback leaves silence.
func (c *Card) onPlayback(process ProcessFunc, pOutput []byte, frames int) {
	if c.stopped.Load() {
		zeroBytes(pOutput)
		return
	}
	for offset := 0; offset < frames; offset += c.cfg.MaxCycleFrames {
		n := frames - offset
		if n > c.cfg.MaxCycleFrames {
			n = c.cfg.MaxCycleFrames
		}
		left, right := c.left[:n], c.right[:n]
		if process(left, right) == Quit {
			c.requestStop()
			zeroBytes(pOutput[offset*protocol.FrameBytes:])
			return
		}
		protocol.InterleaveBytes(pOutput[offset*protocol.FrameBytes:(offset+n)*protocol.FrameBytes], left, right)
	}
}

func (c *Card) onDeviceStop() {
	c.logger.Warn("Audio device stopped", slog.String("client", c.cfg.ClientName))
}

// requestStop marks the callback dead and wakes the watcher. The device
// cannot be stopped from its own thread, so the watcher does it.
func (c *Card) requestStop() {
	if c.stopped.Swap(true) {
		return
	}
	close(c.stopCh)
}

func (c *Card) stopWatcher() {
	select {
	case <-c.stopCh:
		c.logger.Warn("Audio callback quit, stopping device", slog.String("client", c.cfg.ClientName))
		if err := c.device.Stop(); err != nil {
			c.logger.Error("Failed to stop audio device", slog.String("error", err.Error()))
		}
	case <-c.closeCh:
	}
}

// Close releases the device and the host context. Steady-state operation
// never tears down; startup failure paths and tests do.
func (c *Card) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closeCh)
	c.stopped.Store(true)

	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}

	if c.ctx != nil {
		if err := c.ctx.Uninit(); err != nil {
			return fmt.Errorf("failed to release host audio context: %w", err)
		}
		c.ctx.Free()
		c.ctx = nil
	}

	return nil
}

func zeroBytes(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
