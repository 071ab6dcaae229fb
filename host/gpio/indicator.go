//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// IndicatorLine drives a status LED on an output line
type IndicatorLine struct {
	line     *gpiocdev.Line
	on       bool
	failures uint32
}

// OpenIndicatorLine requests offset on chip as an output, initially low
func OpenIndicatorLine(chip string, offset int) (*IndicatorLine, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request %s:%d: %w", chip, offset, err)
	}
	return &IndicatorLine{line: line}, nil
}

// SetIndicator implements core.IndicatorDriver. Only level changes reach
// the kernel.
func (l *IndicatorLine) SetIndicator(on bool) {
	if on == l.on {
		return
	}
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		l.failures++
		return
	}
	l.on = on
}

// Failures returns the number of rejected writes
func (l *IndicatorLine) Failures() uint32 {
	return l.failures
}

// Close turns the LED off and releases the line
func (l *IndicatorLine) Close() error {
	l.line.SetValue(0)
	l.line.Reconfigure(gpiocdev.AsInput)
	return l.line.Close()
}
