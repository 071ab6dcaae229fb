// Package config loads the YAML configuration shared by the host tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"ppmpad/core"
)

var (
	ErrButtonCount  = errors.New("decoder.buttons needs exactly two channels")
	ErrPollInterval = errors.New("gpio.poll_interval must be positive")
	ErrStaleAfter   = errors.New("monitor.stale_after must be positive")
	ErrNoDevice     = errors.New("serial.device is empty")
	ErrNoChip       = errors.New("gpio.chip is empty")
)

// Config is the root of the YAML document
type Config struct {
	Decoder Decoder `yaml:"decoder"`
	GPIO    GPIO    `yaml:"gpio"`
	Serial  Serial  `yaml:"serial"`
	Monitor Monitor `yaml:"monitor"`
	Log     Log     `yaml:"log"`
}

// Axes maps gamepad axes to frame channels
type Axes struct {
	X  uint8 `yaml:"x"`
	Y  uint8 `yaml:"y"`
	Rx uint8 `yaml:"rx"`
	Ry uint8 `yaml:"ry"`
}

// Decoder mirrors core.Config with human friendly units
type Decoder struct {
	ButtonThreshold   uint32        `yaml:"button_threshold"`
	NoiseRejection    uint32        `yaml:"noise_rejection"`
	JitterFloor       uint32        `yaml:"jitter_floor"`
	CalibrationWindow time.Duration `yaml:"calibration_window"`
	Axes              Axes          `yaml:"axes"`
	Buttons           []uint8       `yaml:"buttons"`
	InvertButtons     bool          `yaml:"invert_buttons"`
}

// GPIO selects the Linux lines used by ppmpad-gpio
type GPIO struct {
	Chip           string        `yaml:"chip"`
	Line           int           `yaml:"line"`
	IndicatorLine  int           `yaml:"indicator_line"` // -1 disables the indicator
	PollInterval   time.Duration `yaml:"poll_interval"`
	StatusInterval time.Duration `yaml:"status_interval"`
}

// Serial configures the firmware's CDC port
type Serial struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Monitor configures ppm-monitor
type Monitor struct {
	StaleAfter time.Duration `yaml:"stale_after"`
}

// Log configures logging and optional file rotation
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	d := core.DefaultConfig()
	return &Config{
		Decoder: Decoder{
			ButtonThreshold:   d.ButtonThreshold,
			NoiseRejection:    d.NoiseRejection,
			JitterFloor:       d.JitterFloor,
			CalibrationWindow: time.Duration(d.CalibrationWindow) * time.Microsecond,
			Axes: Axes{
				X:  d.AxisChannels[core.AxisX],
				Y:  d.AxisChannels[core.AxisY],
				Rx: d.AxisChannels[core.AxisRx],
				Ry: d.AxisChannels[core.AxisRy],
			},
			Buttons:       d.ButtonChannels[:],
			InvertButtons: d.InvertButtons,
		},
		GPIO: GPIO{
			Chip:           "gpiochip0",
			Line:           17,
			IndicatorLine:  -1,
			PollInterval:   time.Millisecond,
			StatusInterval: 5 * time.Second,
		},
		Serial: Serial{
			Device:      "/dev/ttyACM0",
			Baud:        115200,
			ReadTimeout: 100 * time.Millisecond,
		},
		Monitor: Monitor{
			StaleAfter: 500 * time.Millisecond,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(c)
	if errors.Is(err, io.EOF) {
		// Empty document
		return nil
	}
	return err
}

// Validate checks every section
func (c *Config) Validate() error {
	if _, err := c.CoreConfig(); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if c.GPIO.Chip == "" {
		return ErrNoChip
	}
	if c.GPIO.PollInterval <= 0 {
		return ErrPollInterval
	}
	if c.Serial.Device == "" {
		return ErrNoDevice
	}
	if c.Monitor.StaleAfter <= 0 {
		return ErrStaleAfter
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// CoreConfig converts the decoder section into a validated core.Config
func (c *Config) CoreConfig() (core.Config, error) {
	d := c.Decoder
	if len(d.Buttons) != core.ButtonCount {
		return core.Config{}, ErrButtonCount
	}
	if d.CalibrationWindow/time.Microsecond > math.MaxUint32 {
		return core.Config{}, core.ErrBadCalibration
	}

	cfg := core.Config{
		ButtonThreshold:   d.ButtonThreshold,
		NoiseRejection:    d.NoiseRejection,
		JitterFloor:       d.JitterFloor,
		CalibrationWindow: uint32(d.CalibrationWindow / time.Microsecond),
		InvertButtons:     d.InvertButtons,
	}
	cfg.AxisChannels[core.AxisX] = d.Axes.X
	cfg.AxisChannels[core.AxisY] = d.Axes.Y
	cfg.AxisChannels[core.AxisRx] = d.Axes.Rx
	cfg.AxisChannels[core.AxisRy] = d.Axes.Ry
	copy(cfg.ButtonChannels[:], d.Buttons)

	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}
