//go:build linux

package gpio

import "golang.org/x/sys/unix"

// MonotonicClock implements core.Clock over CLOCK_MONOTONIC, truncated to
// 32 bits of microseconds like the MCU timer.
type MonotonicClock struct{}

func (MonotonicClock) Micros() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint32(ts.Nano() / 1000)
}
