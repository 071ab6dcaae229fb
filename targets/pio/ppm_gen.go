//go:build rp2040 || rp2350

// Package pio generates a PPM test signal with a PIO state machine.
package pio

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for PPM pulse generation, clocked at 1MHz
// Each FIFO word is one pulse period minus the fixed overhead:
//
//	pull block          1 cycle
//	out x, 32           1 cycle
//	set pins, 1 [31]   32 cycles  (rising edge, 32µs mark)
//	set pins, 0         1 cycle
//	jmp x--, 4        x+1 cycles
//
// so the rising edges are x+36 µs apart.
//
// buildPPMProgram creates the generator PIO program using AssemblerV0
func buildPPMProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                    // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(),             // 1: out x, 32 (period - overhead)
		asm.Set(rp2pio.SetDestPins, 1).Delay(31).Encode(), // 2: set pins, 1 [31]
		asm.Set(rp2pio.SetDestPins, 0).Encode(),           // 3: set pins, 0
		// space_loop:
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(), // 4: jmp x--, 4
		// .wrap
	}
}

const (
	ppmPIOOrigin = 0 // Load at offset 0 for correct jump addresses

	// PulseOverhead is the fixed part of every generated period in µs
	PulseOverhead = 36
	// MinPulse is the shortest period the program can produce
	MinPulse = PulseOverhead
)

var (
	ErrNoStateMachine = errors.New("no free PIO state machine")
	ErrPulseTooShort  = errors.New("pulse shorter than generator overhead")
)

// PPMGenerator emits rising edges spaced by queued pulse periods
type PPMGenerator struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
	pioNum uint8
	smNum  uint8
}

// NewPPMGenerator allocates a state machine for a generator
func NewPPMGenerator() (*PPMGenerator, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, ErrNoStateMachine
	}

	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &PPMGenerator{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		pioNum: pioNum,
		smNum:  smNum,
	}, nil
}

// Init loads the program and starts the state machine driving pin
func (g *PPMGenerator) Init(pin machine.Pin) error {
	g.pin = pin

	// CRITICAL: Claim the state machine first!
	g.sm.TryClaim()

	program := buildPPMProgram()
	offset, err := g.pio.AddProgram(program, ppmPIOOrigin)
	if err != nil {
		return err
	}
	g.offset = offset

	g.pin.Configure(machine.PinConfig{Mode: g.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(g.pin, 1)

	// Shift right, autopull disabled (explicit PULL), 32-bit threshold
	cfg.SetOutShift(true, false, 32)

	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// One PIO cycle per microsecond
	cfg.SetClkDivIntFrac(uint16(machine.CPUFrequency()/1000000), 0)

	// Initialize state machine FIRST
	g.sm.Init(offset, cfg)

	// THEN set pin directions (must be after Init!)
	g.sm.SetPindirsConsecutive(g.pin, 1, true)
	g.sm.SetPinsConsecutive(g.pin, 1, false)

	g.sm.SetEnabled(true)
	return nil
}

// Queue adds one pulse period in µs. Returns false when the TX FIFO is full;
// the caller retries later instead of spinning.
func (g *PPMGenerator) Queue(pulse uint32) (bool, error) {
	if pulse < MinPulse {
		return false, ErrPulseTooShort
	}
	if g.sm.IsTxFIFOFull() {
		return false, nil
	}
	g.sm.TxPut(PulseWord(pulse))
	return true, nil
}

// PulseWord converts a pulse period into the FIFO word the program expects
func PulseWord(pulse uint32) uint32 {
	return pulse - PulseOverhead
}

// Stop halts the state machine and flushes pending pulses
func (g *PPMGenerator) Stop() {
	g.sm.SetEnabled(false)
	g.sm.ClearFIFOs()
	g.sm.Restart()
	g.sm.SetPinsConsecutive(g.pin, 1, false)
	releasePIO(g.pioNum, g.smNum)
}
