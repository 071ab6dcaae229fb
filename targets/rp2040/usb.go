//go:build rp2040 || rp2350

package main

import (
	"machine"
)

// InitUSB initializes the USB CDC port used for telemetry.
// TinyGo sets up the composite CDC + HID device; machine.Serial is the CDC
// side of it.
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// writeUSB flushes the telemetry buffer to the CDC port. A host that is not
// reading makes writes fail; after a few failures stale reports are dropped
// instead of retried.
func writeUSB() {
	if outputBuffer.CurPosition() == 0 {
		return
	}

	if _, err := outputBuffer.WriteTo(machine.Serial); err != nil {
		consecutiveWriteFailures++
		if consecutiveWriteFailures > 10 {
			consecutiveWriteFailures = 0
			// Don't keep trying to send stale data
			outputBuffer.Reset()
		}
		return
	}

	consecutiveWriteFailures = 0
}
