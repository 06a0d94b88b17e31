package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xnor99/netaudio/internal/bridge"
	"github.com/xnor99/netaudio/internal/config"
	"github.com/xnor99/netaudio/internal/metrics"
	"github.com/xnor99/netaudio/internal/monitor"
	"github.com/xnor99/netaudio/internal/soundcard"
)

const (
	serviceName    = "netaudio"
	serviceVersion = "1.0.0"

	modeSender   = "sender"
	modeReceiver = "receiver"
)

const usageText = "usage: netaudio [flags] <bind_addr> [<send_addr>]"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (built-in defaults when omitted)")
	flag.Parse()

	// Argument errors must exit before any socket or audio initialization.
	mode, bind, send, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usageText)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("mode", mode),
		slog.String("bind_addr", bind.String()),
	)

	// Initialize Prometheus metrics on the default registry so the monitor's
	// /metrics endpoint serves them
	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Construct the selected bridge half. Its network loop runs later on the
	// main goroutine; its Process method feeds the audio device.
	var (
		networkLoop func() error
		process     soundcard.ProcessFunc
	)
	switch mode {
	case modeSender:
		sender, err := bridge.NewSender(cfg, logger, appMetrics, bind, send)
		if err != nil {
			logger.Error("Failed to create sender", slog.String("error", err.Error()))
			os.Exit(1)
		}
		networkLoop = sender.Run
		process = sender.Process
	case modeReceiver:
		receiver, err := bridge.NewReceiver(cfg, logger, appMetrics, bind)
		if err != nil {
			logger.Error("Failed to create receiver", slog.String("error", err.Error()))
			os.Exit(1)
		}
		networkLoop = receiver.Run
		process = receiver.Process
	}

	card, err := soundcard.Connect(soundcard.Config{
		ClientName:     cfg.Client.Name,
		SampleRate:     uint32(cfg.Client.SampleRate),
		MaxCycleFrames: cfg.Audio.MaxCycleFrames,
	}, logger)
	if err != nil {
		logger.Error("Failed to connect to host audio subsystem", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if mode == modeSender {
		err = card.StartCapture(process)
	} else {
		err = card.StartPlayback(process)
	}
	if err != nil {
		logger.Error("Failed to start audio device", slog.String("error", err.Error()))
		card.Close()
		os.Exit(1)
	}

	logger.Info("Audio device running",
		slog.String("client", cfg.Client.Name),
		slog.Int("sample_rate", int(card.SampleRate())),
	)

	// Start monitoring server (if enabled)
	if cfg.Monitor.Enabled {
		monitorServer := monitor.NewServer(cfg, logger, appMetrics, mode)
		if err := monitorServer.Start(); err != nil {
			logger.Error("Failed to start monitoring server", slog.String("error", err.Error()))
		}
	}

	// The network loop never returns in steady state; any return is fatal.
	if err := networkLoop(); err != nil {
		logger.Error("Network loop failed", slog.String("error", err.Error()))
	} else {
		logger.Error("Network loop stopped unexpectedly")
	}
	os.Exit(1)
}

// parseArgs maps the positional arguments onto a bridge mode and resolved
// addresses. A second address selects sender mode.
func parseArgs(args []string) (mode string, bind, send *net.UDPAddr, err error) {
	if len(args) < 1 || len(args) > 2 {
		return "", nil, nil, fmt.Errorf("expected 1 or 2 address arguments, got %d", len(args))
	}

	bind, err = net.ResolveUDPAddr("udp", args[0])
	if err != nil {
		return "", nil, nil, fmt.Errorf("invalid bind address %q: %w", args[0], err)
	}

	if len(args) == 1 {
		return modeReceiver, bind, nil, nil
	}

	send, err = net.ResolveUDPAddr("udp", args[1])
	if err != nil {
		return "", nil, nil, fmt.Errorf("invalid send address %q: %w", args[1], err)
	}

	return modeSender, bind, send, nil
}

// loadConfig loads the configuration file, or the built-in defaults when no
// path was given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr", "":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
