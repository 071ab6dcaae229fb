//go:build rp2350

package main

// NOTE: RP2350 timer is at a DIFFERENT address than RP2040!
const (
	chipName  = "rp2350"
	timerBase = 0x400B0000 // TIMER0
)
