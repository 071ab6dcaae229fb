//go:build rp2040 || rp2350

package main

import (
	"machine/usb/hid/joystick"
	"ppmpad/core"
)

// HID axis indices of TinyGo's default joystick definition
// (X, Y, Z, Rx, Ry, Rz)
var hidAxis = [core.AxisCount]int{
	core.AxisX:  0,
	core.AxisY:  1,
	core.AxisRx: 3,
	core.AxisRy: 4,
}

// Default joystick logical range
const (
	hidAxisMin = -32767
	hidAxisMax = 32767
)

// JoystickGamepad implements core.GamepadDriver on the USB HID joystick
type JoystickGamepad struct {
	js *joystick.Joystick
}

// NewJoystickGamepad claims the HID joystick interface
func NewJoystickGamepad() *JoystickGamepad {
	return &JoystickGamepad{js: joystick.Port()}
}

// SetAxis stages an axis value, scaling 0..255 onto the HID range
func (g *JoystickGamepad) SetAxis(axis core.Axis, value uint8) {
	if axis >= core.AxisCount {
		return
	}
	g.js.SetAxis(hidAxis[axis], scaleHID(value))
}

// SetButton stages a button state
func (g *JoystickGamepad) SetButton(index uint8, pressed bool) {
	g.js.SetButton(int(index), pressed)
}

// SendUpdate queues the HID report. The endpoint queues internally, so
// there is nothing to report back.
func (g *JoystickGamepad) SendUpdate() error {
	g.js.SendState()
	return nil
}

func scaleHID(v uint8) int {
	return int(v)*(hidAxisMax-hidAxisMin)/core.AxisMax + hidAxisMin
}
