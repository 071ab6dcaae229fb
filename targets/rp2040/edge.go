//go:build rp2040 || rp2350

package main

import (
	"machine"
	"ppmpad/core"
)

var edgeDecoder *core.Decoder

// InitEdgeInput configures the PPM input pin and registers the rising edge
// interrupt feeding d. The receiver drives the line; the pull-down keeps an
// unplugged input quiet.
func InitEdgeInput(pin machine.Pin, d *core.Decoder) error {
	edgeDecoder = d
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return pin.SetInterrupt(machine.PinRising, handleEdge)
}

// handleEdge runs in interrupt context
func handleEdge(machine.Pin) {
	edgeDecoder.HandleEdge(GetHardwareTime())
}
