// Package sink holds gamepad drivers for builds without a USB HID device.
package sink

import (
	"github.com/charmbracelet/log"

	"ppmpad/core"
)

// Snapshot is one published gamepad state
type Snapshot struct {
	Axes    [core.AxisCount]uint8
	Buttons [core.ButtonCount]bool
}

// LogGamepad implements core.GamepadDriver by logging every snapshot that
// differs from the previous send.
type LogGamepad struct {
	logger  *log.Logger
	staged  Snapshot
	sent    Snapshot
	primed  bool
	sends   uint32
	changes uint32
}

func NewLogGamepad(logger *log.Logger) *LogGamepad {
	return &LogGamepad{logger: logger}
}

func (g *LogGamepad) SetAxis(axis core.Axis, value uint8) {
	if axis < core.AxisCount {
		g.staged.Axes[axis] = value
	}
}

func (g *LogGamepad) SetButton(index uint8, pressed bool) {
	if int(index) < core.ButtonCount {
		g.staged.Buttons[index] = pressed
	}
}

func (g *LogGamepad) SendUpdate() error {
	g.sends++
	if g.primed && g.staged == g.sent {
		return nil
	}
	g.primed = true
	g.sent = g.staged
	g.changes++

	kv := make([]interface{}, 0, 2*(core.AxisCount+core.ButtonCount))
	for a := core.Axis(0); a < core.AxisCount; a++ {
		kv = append(kv, a.String(), g.sent.Axes[a])
	}
	for b, pressed := range g.sent.Buttons {
		kv = append(kv, buttonKeys[b], pressed)
	}
	g.logger.Info("gamepad", kv...)
	return nil
}

var buttonKeys = [core.ButtonCount]string{"B0", "B1"}

// Last returns the most recently published snapshot
func (g *LogGamepad) Last() Snapshot {
	return g.sent
}

// Counters returns the number of sends and of logged changes
func (g *LogGamepad) Counters() (sends, changes uint32) {
	return g.sends, g.changes
}
