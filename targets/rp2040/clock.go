//go:build rp2040 || rp2350

package main

import (
	"ppmpad/core"
	"runtime/volatile"
	"unsafe"
)

// Timer register offset, identical on RP2040 TIMER and RP2350 TIMER0:
// timeRawL @ 0x28 - Raw read from lower 32b (no latching)
const timerTimeRawL = timerBase + 0x28

var timerRawL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeRawL)))

// InitClock prepares the hardware timer
// The timer counts microseconds at 1MHz; TinyGo's runtime already started
// the tick generator.
func InitClock() {
	// Read and discard a few values to ensure we get stable readings
	_ = timerRawL.Get()
	_ = timerRawL.Get()
	_ = timerRawL.Get()
	UpdateSystemTime()
}

// GetHardwareTime reads the low 32 bits of the microsecond counter.
// Safe from interrupt context.
func GetHardwareTime() uint32 {
	return timerRawL.Get()
}

// UpdateSystemTime publishes the hardware time to core.GetTime
// Called at the top of every main loop iteration
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
