//go:build rp2040 || rp2350

package main

import (
	"machine"
	"ppmpad/core"
	ppmpio "ppmpad/targets/pio"
	"time"
)

// startBench runs the PIO generator on pin with the core bench sweep.
// Frames are queued from a goroutine so the main loop is never blocked on
// the FIFO.
func startBench(pin machine.Pin) {
	gen, err := ppmpio.NewPPMGenerator()
	if err != nil {
		core.DebugPrintln("bench: " + err.Error())
		return
	}
	if err := gen.Init(pin); err != nil {
		core.DebugPrintln("bench: " + err.Error())
		return
	}
	go benchLoop(gen)
}

func benchLoop(gen *ppmpio.PPMGenerator) {
	var n uint32
	for {
		frame := core.BenchFrame(n)
		for _, pulse := range frame {
			for {
				ok, err := gen.Queue(pulse)
				if err != nil {
					core.DebugPrintln("bench: " + err.Error())
					gen.Stop()
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
