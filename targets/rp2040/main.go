//go:build rp2040 || rp2350

package main

import (
	"machine"
	"ppmpad/core"
	"ppmpad/protocol"
	"time"
)

var (
	decoder      *core.Decoder
	telemetry    *core.Telemetry
	outputBuffer *protocol.ScratchOutput

	// Debug counters
	loopPanics               uint32
	consecutiveWriteFailures uint32
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	mode := GetMode()

	// Initialize USB CDC immediately
	InitUSB()
	InitClock()

	if mode.DebugUART {
		InitDebugUART()
		core.SetDebugWriter(DebugPrintln)
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}

	gamepad := NewJoystickGamepad()
	indicator := NewStatusIndicator(machine.LED, mode.PixelPin)
	decoder = core.NewDecoder(core.DefaultConfig(), core.SystemClock{}, gamepad, indicator)

	outputBuffer = protocol.NewScratchOutput(protocol.MessageMax)
	telemetry = core.NewTelemetry(protocol.NewBlockWriter(outputBuffer),
		core.DefaultTelemetryInterval, core.DefaultRangeInterval)

	if err := InitEdgeInput(mode.PPMPin, decoder); err != nil {
		core.DebugPrintln("edge input: " + err.Error())
	}
	UpdateSystemTime()
	decoder.Start()

	if mode.BenchGenerator {
		startBench(mode.BenchPin)
	}

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopPanics++
					outputBuffer.Reset()
					core.DumpEventRing()
				}
			}()

			UpdateSystemTime()
			decoder.Poll()

			if mode.Telemetry && telemetry.Tick(core.GetTime(), decoder) {
				writeUSB()
			}
		}()

		// Yield to other goroutines
		time.Sleep(100 * time.Microsecond)
	}
}
