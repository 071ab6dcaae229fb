package core

import "sync/atomic"

// TimerFreq is the tick rate of the system clock. The RP2040/RP2350 timer
// counts microseconds, so one tick is one microsecond.
const TimerFreq = 1000000

var systemTicks atomic.Uint32

// GetTime returns the current system time in microseconds
func GetTime() uint32 {
	return systemTicks.Load()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	systemTicks.Store(ticks)
}

// Clock is a monotonic microsecond counter. It wraps every ~71.6 minutes;
// callers only ever look at differences.
type Clock interface {
	Micros() uint32
}

// SystemClock reads the time published by the target's UpdateSystemTime.
type SystemClock struct{}

func (SystemClock) Micros() uint32 {
	return GetTime()
}

// Elapsed returns now-since using wrapping unsigned arithmetic
func Elapsed(since, now uint32) uint32 {
	return now - since
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return ms * (TimerFreq / 1000)
}

// TimerToMS converts timer ticks to milliseconds
func TimerToMS(ticks uint32) uint32 {
	return ticks / (TimerFreq / 1000)
}
