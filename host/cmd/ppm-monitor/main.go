// ppm-monitor prints the telemetry stream of a ppmpad firmware.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"ppmpad/host/config"
	"ppmpad/host/logging"
	"ppmpad/host/monitor"
	"ppmpad/host/serial"
	"ppmpad/protocol"
)

var (
	configFile = pflag.StringP("config", "c", "", "YAML configuration file.")
	device     = pflag.StringP("device", "d", "", "Serial device of the firmware's CDC port.")
	baud       = pflag.IntP("baud", "b", 0, "Baud rate (ignored by USB CDC).")
	logLevel   = pflag.StringP("log-level", "l", "", "Log level: debug, info, warn, error.")
	staleAfter = pflag.DurationP("stale-after", "s", 0, "Report the link stale after this long without a block.")
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

	logger, closer, err := logging.New(cfg.Log, os.Stderr, "ppm-monitor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	port, err := serial.Open(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
	if err != nil {
		logger.Error("open port", "err", err)
		os.Exit(1)
	}
	defer port.Close()

	logger.Info("listening", "device", cfg.Serial.Device, "protocol", protocol.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(port, logger, cfg.Monitor.StaleAfter)
	runErr := mon.Run(ctx)

	stats := mon.Stats()
	logger.Info("stopped",
		"blocks", stats.Reader.Blocks,
		"crc_errors", stats.Reader.CRCErrors,
		"frame_errors", stats.Reader.FrameErrors,
		"dropped", stats.Reader.DroppedBytes,
		"seq_gaps", stats.Reader.SeqGaps,
		"decode_errors", stats.DecodeErrors)
	if runErr != nil {
		logger.Error("read", "err", runErr)
		os.Exit(1)
	}
}

// applyFlags overrides config values with the flags given on the command line
func applyFlags(cfg *config.Config) {
	if pflag.CommandLine.Changed("device") {
		cfg.Serial.Device = *device
	}
	if pflag.CommandLine.Changed("baud") {
		cfg.Serial.Baud = *baud
	}
	if pflag.CommandLine.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if pflag.CommandLine.Changed("stale-after") {
		cfg.Monitor.StaleAfter = *staleAfter
	}
}
