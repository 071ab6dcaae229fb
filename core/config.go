package core

import "errors"

// Frame geometry and timing limits of the PPM signal, in microseconds
const (
	FramePulses = 7 // pause pulse + 6 channels

	PausePulseMinLength = 5000
	PausePulseMaxLength = 20000
	FrameMinLength      = 20000
	FrameMaxLength      = 25000

	// SignalLossFrames is how many maximum-length frames may pass without
	// an edge before the signal is declared lost (~250ms).
	SignalLossFrames = 10

	CenterPulse = 1500 // nominal stick center, initial calibration bound
)

// Channel layout inside a frame
const (
	FirstAxisChannel   = 1
	AxisChannels       = 4
	FirstButtonChannel = FirstAxisChannel + AxisChannels
	ButtonChannels     = 2
)

// Defaults taken from the reference receiver setup
const (
	DefaultButtonThreshold   = 1500
	DefaultNoiseRejection    = 200              // calibration outlier limit
	DefaultJitterFloor       = 20               // output filter noise floor
	DefaultCalibrationWindow = 30 * 1000 * 1000 // 30 seconds
	DefaultTelemetryInterval = 50 * 1000        // state report every 50ms
	DefaultRangeInterval     = 500 * 1000       // range report every 500ms
)

var (
	ErrBadChannelMap    = errors.New("channel map entry outside axis/button range")
	ErrBadThreshold     = errors.New("threshold must be positive")
	ErrBadCalibration   = errors.New("calibration window must be positive")
	ErrDuplicateChannel = errors.New("channel mapped twice")
)

// Config holds the tunables of the decode pipeline.
type Config struct {
	ButtonThreshold   uint32 // button pressed above this pulse width
	NoiseRejection    uint32 // calibration samples this far (or more) from a bound are dropped
	JitterFloor       uint32 // axis forwarded only when the pulse moved more than this
	CalibrationWindow uint32 // µs spent calibrating after Start

	// AxisChannels[a] is the frame slot feeding gamepad axis a
	AxisChannels [AxisCount]uint8
	// ButtonChannels[b] is the frame slot feeding gamepad button b
	ButtonChannels [ButtonCount]uint8
	// InvertButtons sends !MapChannel(...) to the gamepad, matching
	// receivers whose switches idle high.
	InvertButtons bool
}

// DefaultConfig returns the configuration used by the firmware
func DefaultConfig() Config {
	return Config{
		ButtonThreshold:   DefaultButtonThreshold,
		NoiseRejection:    DefaultNoiseRejection,
		JitterFloor:       DefaultJitterFloor,
		CalibrationWindow: DefaultCalibrationWindow,
		AxisChannels: [AxisCount]uint8{
			AxisX:  4,
			AxisY:  1,
			AxisRx: 3,
			AxisRy: 2,
		},
		ButtonChannels: [ButtonCount]uint8{5, 6},
		InvertButtons:  true,
	}
}

// Validate checks the channel map and thresholds
func (c *Config) Validate() error {
	if c.ButtonThreshold == 0 || c.NoiseRejection == 0 {
		return ErrBadThreshold
	}
	if c.CalibrationWindow == 0 {
		return ErrBadCalibration
	}

	var used [FramePulses]bool
	for _, ch := range c.AxisChannels {
		if !isAxisChannel(int(ch)) {
			return ErrBadChannelMap
		}
		if used[ch] {
			return ErrDuplicateChannel
		}
		used[ch] = true
	}
	for _, ch := range c.ButtonChannels {
		if !isButtonChannel(int(ch)) {
			return ErrBadChannelMap
		}
		if used[ch] {
			return ErrDuplicateChannel
		}
		used[ch] = true
	}
	return nil
}
