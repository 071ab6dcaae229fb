//go:build linux

// ppmpad-gpio runs the PPM decoder on a Linux GPIO line and logs the
// resulting gamepad state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"ppmpad/core"
	"ppmpad/host/config"
	"ppmpad/host/gpio"
	"ppmpad/host/logging"
	"ppmpad/host/sink"
)

var (
	configFile    = pflag.StringP("config", "c", "", "YAML configuration file.")
	chip          = pflag.StringP("chip", "g", "", "GPIO chip name, e.g. gpiochip0.")
	line          = pflag.IntP("line", "n", 0, "Line offset carrying the PPM signal.")
	indicatorLine = pflag.IntP("indicator-line", "i", -1, "Output line for the status LED, -1 for none.")
	logLevel      = pflag.StringP("log-level", "l", "", "Log level: debug, info, warn, error.")
	pollInterval  = pflag.DurationP("poll-interval", "p", 0, "Decoder poll interval.")
)

func main() {
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Log, os.Stderr, "ppmpad")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	logging.BridgeCore(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("exit", "err", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	coreCfg, err := cfg.CoreConfig()
	if err != nil {
		return err
	}

	var indicator core.IndicatorDriver
	if cfg.GPIO.IndicatorLine >= 0 {
		led, err := gpio.OpenIndicatorLine(cfg.GPIO.Chip, cfg.GPIO.IndicatorLine)
		if err != nil {
			return fmt.Errorf("indicator: %w", err)
		}
		defer led.Close()
		indicator = led
	}

	gamepad := sink.NewLogGamepad(logger)
	decoder := core.NewDecoder(coreCfg, gpio.MonotonicClock{}, gamepad, indicator)

	edges, err := gpio.OpenEdgeSource(cfg.GPIO.Chip, cfg.GPIO.Line, decoder)
	if err != nil {
		return fmt.Errorf("ppm input: %w", err)
	}
	defer edges.Close()

	decoder.Start()
	logger.Info("decoding",
		"chip", cfg.GPIO.Chip,
		"line", cfg.GPIO.Line,
		"calibration", cfg.Decoder.CalibrationWindow)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poll := time.NewTicker(cfg.GPIO.PollInterval)
	defer poll.Stop()
	var status <-chan time.Time
	if cfg.GPIO.StatusInterval > 0 {
		t := time.NewTicker(cfg.GPIO.StatusInterval)
		defer t.Stop()
		status = t.C
	}

	for {
		select {
		case <-ctx.Done():
			logStatus(logger, decoder.Status(), edges)
			logging.DumpEvents(logger)
			return nil
		case <-poll.C:
			decoder.Poll()
		case <-status:
			logStatus(logger, decoder.Status(), edges)
		}
	}
}

func logStatus(logger *log.Logger, s core.Status, edges *gpio.EdgeSource) {
	logger.Info("status",
		"signal", s.Signal,
		"sync", s.Sync.String(),
		"calibration", s.Calibration.String(),
		"edges", s.Edges,
		"frames", s.Frames,
		"resyncs", s.ResyncRequests,
		"losses", s.SignalLosses,
		"rejected", s.Rejected,
		"overruns", edges.Overruns())
}

// applyFlags overrides config values with the flags given on the command line
func applyFlags(cfg *config.Config) {
	if pflag.CommandLine.Changed("chip") {
		cfg.GPIO.Chip = *chip
	}
	if pflag.CommandLine.Changed("line") {
		cfg.GPIO.Line = *line
	}
	if pflag.CommandLine.Changed("indicator-line") {
		cfg.GPIO.IndicatorLine = *indicatorLine
	}
	if pflag.CommandLine.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if pflag.CommandLine.Changed("poll-interval") {
		cfg.GPIO.PollInterval = *pollInterval
	}
}
