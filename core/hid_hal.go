package core

// Axis identifies a gamepad axis
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisRx
	AxisRy

	AxisCount = AxisChannels
)

// ButtonCount is the number of gamepad buttons driven by the decoder
const ButtonCount = ButtonChannels

var axisNames = [AxisCount]string{"X", "Y", "Rx", "Ry"}

func (a Axis) String() string {
	if a < AxisCount {
		return axisNames[a]
	}
	return "axis?"
}

// GamepadDriver is the abstract human-interface output the decoder feeds.
// Platform-specific implementations handle the actual USB report.
type GamepadDriver interface {
	// SetAxis stages an axis value (0..255)
	SetAxis(axis Axis, value uint8)

	// SetButton stages a button state
	SetButton(index uint8, pressed bool)

	// SendUpdate publishes the staged snapshot. Called once per poll
	// whether or not anything changed.
	SendUpdate() error
}

// IndicatorDriver drives a binary status light
type IndicatorDriver interface {
	SetIndicator(on bool)
}
