//go:build rp2040 || rp2350

package main

import "machine"

// ModeConfig determines how the firmware runs
type ModeConfig struct {
	// PPMPin receives the receiver's PPM output
	PPMPin machine.Pin

	// PixelPin drives a WS2812 status pixel, machine.NoPin when absent
	PixelPin machine.Pin

	// Telemetry streams state and range reports over USB CDC
	Telemetry bool

	// DebugUART sends debug text and event dumps to the default UART
	DebugUART bool

	// BenchGenerator emits a synthetic PPM sweep on BenchPin. Wire BenchPin
	// to PPMPin to exercise the decoder without a receiver.
	BenchGenerator bool
	BenchPin       machine.Pin
}

// GetMode returns the current mode configuration
// This can be modified at compile time
func GetMode() ModeConfig {
	return ModeConfig{
		PPMPin:         machine.GPIO2,
		PixelPin:       machine.NoPin,
		Telemetry:      true,
		DebugUART:      false,
		BenchGenerator: false,
		BenchPin:       machine.GPIO3,
	}
}
