// Automatic min/max calibration of channel pulse widths
package core

// CalibrationState is the controller calibration lifecycle
type CalibrationState uint8

const (
	CalibrationIdle CalibrationState = iota // not started
	CalibrationRunning
	CalibrationDone
)

func (s CalibrationState) String() string {
	switch s {
	case CalibrationIdle:
		return "idle"
	case CalibrationRunning:
		return "calibrating"
	case CalibrationDone:
		return "calibrated"
	default:
		return "unknown"
	}
}

// Range is the observed pulse width span of one channel
type Range struct {
	Min uint32
	Max uint32
}

// Span returns Max-Min, zero for a degenerate range
func (r Range) Span() uint32 {
	if r.Max <= r.Min {
		return 0
	}
	return r.Max - r.Min
}

// Ranges holds one Range per frame slot. Slot 0 (pause) is unused.
type Ranges [FramePulses]Range

// NominalRanges returns ranges collapsed onto the stick center
func NominalRanges() Ranges {
	var r Ranges
	for ch := 1; ch < FramePulses; ch++ {
		r[ch] = Range{Min: CenterPulse, Max: CenterPulse}
	}
	return r
}

// Calibration widens per-channel ranges during a fixed window after Start.
// Ranges are volatile and reset to nominal on every restart.
type Calibration struct {
	state          CalibrationState
	start          uint32
	window         uint32
	noiseRejection uint32
	ranges         Ranges

	accepted uint32
	rejected uint32
}

// NewCalibration creates an idle calibration with nominal ranges
func NewCalibration(window, noiseRejection uint32) *Calibration {
	return &Calibration{
		window:         window,
		noiseRejection: noiseRejection,
		ranges:         NominalRanges(),
	}
}

// Start enters the calibrating state at time now
func (c *Calibration) Start(now uint32) {
	switch c.state {
	case CalibrationIdle:
		c.state = CalibrationRunning
		c.start = now
	case CalibrationRunning, CalibrationDone:
		// No automatic re-entry
	}
}

// Advance ends calibration once the window has elapsed.
// Returns true on the call that performed the transition.
func (c *Calibration) Advance(now uint32) bool {
	switch c.state {
	case CalibrationRunning:
		if Elapsed(c.start, now) >= c.window {
			c.state = CalibrationDone
			return true
		}
	case CalibrationIdle, CalibrationDone:
	}
	return false
}

// RecordSample widens the ranges with one in-sync frame.
// A sample moves a bound only if it lies within noiseRejection of it; larger
// jumps are taken as capture glitches since real stick travel is spread over
// many frames.
func (c *Calibration) RecordSample(f Frame) {
	if c.state != CalibrationRunning {
		return
	}
	for ch := 1; ch < FramePulses; ch++ {
		pulse := f[ch]
		r := &c.ranges[ch]
		if pulse < r.Min {
			if r.Min-pulse < c.noiseRejection {
				r.Min = pulse
				c.accepted++
			} else {
				c.rejected++
			}
		}
		if pulse > r.Max {
			if pulse-r.Max < c.noiseRejection {
				r.Max = pulse
				c.accepted++
			} else {
				c.rejected++
			}
		}
	}
}

// State returns the current calibration state
func (c *Calibration) State() CalibrationState {
	return c.state
}

// Ranges returns a copy of the calibrated ranges
func (c *Calibration) Ranges() Ranges {
	return c.ranges
}

// Counters returns how many bound moves were accepted and how many samples
// were dropped as noise
func (c *Calibration) Counters() (accepted, rejected uint32) {
	return c.accepted, c.rejected
}
