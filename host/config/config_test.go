package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppmpad/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ppmpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultMatchesCore(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	c, err := cfg.CoreConfig()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultConfig(), c)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
decoder:
  jitter_floor: 30
  calibration_window: 10s
  axes: {x: 1, y: 2, rx: 3, ry: 4}
  invert_buttons: false
gpio:
  line: 22
  poll_interval: 2ms
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 22, cfg.GPIO.Line)
	assert.Equal(t, 2*time.Millisecond, cfg.GPIO.PollInterval)
	assert.Equal(t, "gpiochip0", cfg.GPIO.Chip, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)

	c, err := cfg.CoreConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(30), c.JitterFloor)
	assert.Equal(t, uint32(10000000), c.CalibrationWindow)
	assert.Equal(t, [core.AxisCount]uint8{1, 2, 3, 4}, c.AxisChannels)
	assert.Equal(t, [core.ButtonCount]uint8{5, 6}, c.ButtonChannels)
	assert.False(t, c.InvertButtons)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"duplicate axis", "decoder:\n  axes: {x: 1, y: 1, rx: 3, ry: 4}\n", core.ErrDuplicateChannel},
		{"axis on button channel", "decoder:\n  axes: {x: 6, y: 1, rx: 3, ry: 4}\n", core.ErrBadChannelMap},
		{"one button", "decoder:\n  buttons: [5]\n", ErrButtonCount},
		{"zero poll interval", "gpio:\n  poll_interval: 0s\n", ErrPollInterval},
		{"no device", "serial:\n  device: \"\"\n", ErrNoDevice},
		{"zero stale window", "monitor:\n  stale_after: 0s\n", ErrStaleAfter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "decoder:\n  jitter: 5\n"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "jitter"), err.Error())
}

func TestLoadRejectsBadLevel(t *testing.T) {
	_, err := Load(writeConfig(t, "log:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
