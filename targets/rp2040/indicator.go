//go:build rp2040 || rp2350

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Pixel colors for the on and off levels of the status pattern
var (
	pixelOn  = color.RGBA{R: 0x20, G: 0x08, B: 0x00}
	pixelOff = color.RGBA{}
)

// StatusIndicator implements core.IndicatorDriver on the board LED and,
// when the board has one, a WS2812 RGB pixel.
type StatusIndicator struct {
	led   machine.Pin
	pixel *ws2812.Device
	on    bool
	buf   [1]color.RGBA
}

// NewStatusIndicator configures led as output. pixelPin may be
// machine.NoPin.
func NewStatusIndicator(led, pixelPin machine.Pin) *StatusIndicator {
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.Low()

	s := &StatusIndicator{led: led}
	if pixelPin != machine.NoPin {
		pixelPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		dev := ws2812.New(pixelPin)
		s.pixel = &dev
		s.writePixel()
	}
	return s
}

// SetIndicator drives the light. The pixel is only rewritten on a level
// change: the WS2812 bit stream runs with interrupts off and would delay
// edge timestamps.
func (s *StatusIndicator) SetIndicator(on bool) {
	if on == s.on {
		return
	}
	s.on = on
	s.led.Set(on)
	s.writePixel()
}

func (s *StatusIndicator) writePixel() {
	if s.pixel == nil {
		return
	}
	s.buf[0] = pixelOff
	if s.on {
		s.buf[0] = pixelOn
	}
	s.pixel.WriteColors(s.buf[:])
}
