//go:build rp2040

package main

const (
	chipName  = "rp2040"
	timerBase = 0x40054000 // TIMER
)
