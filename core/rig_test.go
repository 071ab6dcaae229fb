package core

import (
	"errors"
	"testing"
)

type fakeClock struct {
	now uint32
}

func (c *fakeClock) Micros() uint32 { return c.now }

type fakeGamepad struct {
	axes       [AxisCount]uint8
	axisWrites [AxisCount]int
	buttons    [ButtonCount]bool
	sends      int
	failSends  bool
}

func (g *fakeGamepad) SetAxis(axis Axis, value uint8) {
	g.axes[axis] = value
	g.axisWrites[axis]++
}

func (g *fakeGamepad) SetButton(index uint8, pressed bool) {
	g.buttons[index] = pressed
}

func (g *fakeGamepad) SendUpdate() error {
	g.sends++
	if g.failSends {
		return errors.New("usb endpoint busy")
	}
	return nil
}

type fakeIndicator struct {
	on      bool
	changes int
}

func (l *fakeIndicator) SetIndicator(on bool) {
	if on != l.on {
		l.changes++
	}
	l.on = on
}

// rig drives a Decoder with synthetic edges on a fake clock
type rig struct {
	t     *testing.T
	clock *fakeClock
	pad   *fakeGamepad
	led   *fakeIndicator
	dec   *Decoder
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		t:     t,
		clock: &fakeClock{},
		pad:   &fakeGamepad{},
		led:   &fakeIndicator{},
	}
	r.dec = NewDecoder(DefaultConfig(), r.clock, r.pad, r.led)
	r.dec.Start()
	return r
}

// edge advances the clock by pulse and fires one rising edge
func (r *rig) edge(pulse uint32) {
	r.clock.now += pulse
	r.dec.HandleEdge(r.clock.now)
}

// frame emits a pause pulse followed by six channel pulses, then polls
func (r *rig) frame(pause uint32, channels ...uint32) {
	r.t.Helper()
	if len(channels) != FramePulses-1 {
		r.t.Fatalf("frame needs %d channel pulses, got %d", FramePulses-1, len(channels))
	}
	r.edge(pause)
	for _, p := range channels {
		r.edge(p)
	}
	r.dec.Poll()
}

// idle emits centered frames until the clock passes until
func (r *rig) idleUntil(until uint32) {
	for r.clock.now < until {
		r.frame(15000, 1500, 1500, 1500, 1500, 1500, 1500)
	}
}

// sweep walks one channel from..to in steps, other channels centered
func (r *rig) sweep(ch int, from, to, step uint32) {
	pulses := []uint32{1500, 1500, 1500, 1500, 1500, 1500}
	p := from
	for {
		pulses[ch-1] = p
		r.frame(15000, pulses...)
		if p == to {
			return
		}
		if from < to {
			p = min(p+step, to)
		} else {
			p = max(p-step, to)
		}
	}
}

// calibrate sweeps every axis channel across 1000..2000 and waits out the
// calibration window
func (r *rig) calibrate() {
	for ch := FirstAxisChannel; ch < FirstAxisChannel+AxisChannels; ch++ {
		r.sweep(ch, 1500, 1000, 100)
		r.sweep(ch, 1000, 2000, 100)
		r.sweep(ch, 2000, 1500, 100)
	}
	r.idleUntil(DefaultCalibrationWindow + FrameMaxLength)
	if r.dec.Status().Calibration != CalibrationDone {
		r.t.Fatalf("calibration still %v at %d", r.dec.Status().Calibration, r.clock.now)
	}
}
