//go:build rp2040 || rp2350

package main

// PPM loopback test - jumper GP3 (PIO generator) to GP2 (decoder input)
// and watch the USB console. Every second prints the frame rate and the
// sync/signal counters; any resync after lock-in is reported as FAIL.

import (
	"machine"
	"time"

	"ppmpad/core"
	ppmpio "ppmpad/targets/pio"
)

const (
	genPin   = machine.GPIO3
	inputPin = machine.GPIO2

	// Pulses are generated with whole µs resolution; allow capture latency
	pulseTolerance = 5
)

var (
	decoder *core.Decoder
	start   = time.Now()
)

type tickClock struct{}

func (tickClock) Micros() uint32 {
	return uint32(time.Since(start).Microseconds())
}

// nullGamepad accepts every update
type nullGamepad struct{}

func (nullGamepad) SetAxis(core.Axis, uint8) {}
func (nullGamepad) SetButton(uint8, bool) {}
func (nullGamepad) SendUpdate() error { return nil }

func main() {
	time.Sleep(3 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	println("=== PPM Loopback Test ===")
	println("Generator: GP3, Input: GP2")

	gen, err := ppmpio.NewPPMGenerator()
	if err == nil {
		err = gen.Init(genPin)
	}
	if err != nil {
		println("Init error:", err.Error())
		for {
			led.High()
			time.Sleep(100 * time.Millisecond)
			led.Low()
			time.Sleep(100 * time.Millisecond)
		}
	}
	println("Init OK!")

	decoder = core.NewDecoder(core.DefaultConfig(), tickClock{}, nullGamepad{}, nil)
	inputPin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	inputPin.SetInterrupt(machine.PinRising, func(machine.Pin) {
		decoder.HandleEdge(tickClock{}.Micros())
	})
	decoder.Start()

	go generate(gen)

	var lastFrames, lockedResyncs uint32
	locked := false
	report := time.Now()
	for {
		decoder.Poll()
		time.Sleep(200 * time.Microsecond)

		if time.Since(report) < time.Second {
			continue
		}
		report = time.Now()

		s := decoder.Status()
		fps := s.Frames - lastFrames
		lastFrames = s.Frames

		verdict := "OK"
		if !s.Signal || !framePlausible(s.Frame) {
			verdict = "FAIL"
		}
		if locked && s.ResyncRequests != lockedResyncs {
			verdict = "FAIL"
		}
		if !locked && s.Sync == core.InSync {
			locked = true
			lockedResyncs = s.ResyncRequests
		}
		led.Set(verdict == "OK")

		println(verdict, "fps:", fps, "frames:", s.Frames, "resyncs:", s.ResyncRequests,
			"losses:", s.SignalLosses, "pause:", s.Frame[0], "ch1:", s.Frame[1])
	}
}

func framePlausible(f core.Frame) bool {
	if !core.IsPausePulse(f[0]) {
		return false
	}
	for ch := 1; ch < core.FramePulses; ch++ {
		if f[ch]+pulseTolerance < 1000 || f[ch] > 2000+pulseTolerance {
			return false
		}
	}
	return true
}

func generate(gen *ppmpio.PPMGenerator) {
	var n uint32
	for {
		for _, pulse := range core.BenchFrame(n) {
			for {
				ok, err := gen.Queue(pulse)
				if err != nil {
					println("Queue error:", err.Error())
					return
				}
				if ok {
					break
				}
				time.Sleep(time.Millisecond)
			}
		}
		n++
	}
}
