// Edge capture for the PPM input pin.
// HandleEdge runs in interrupt context; everything else reads through Snapshot.
package core

// Frame holds one PPM frame of pulse durations in microseconds.
// Slot 0 is the pause pulse once synchronized, slots 1..6 are channels.
type Frame [FramePulses]uint32

// SlotIndex addresses a frame slot. Invariant: 0 <= i < FramePulses.
type SlotIndex uint8

// Next returns the following slot, wrapping after the last one
func (i SlotIndex) Next() SlotIndex {
	if i >= FramePulses-1 {
		return 0
	}
	return i + 1
}

// SyncState tells whether slot 0 of the frame buffer is trusted to hold the
// pause pulse.
type SyncState uint8

const (
	OutOfSync SyncState = iota
	InSync
)

func (s SyncState) String() string {
	switch s {
	case InSync:
		return "in-sync"
	case OutOfSync:
		return "out-of-sync"
	default:
		return "unknown"
	}
}

// EdgeCapture records inter-edge durations into a cyclic frame buffer.
// The edge handler is the only writer of the buffer, slot index, edge time
// and the InSync transition. The poll loop only calls Snapshot and
// RequestResync.
type EdgeCapture struct {
	pulses   Frame     // live buffer, mutated every edge
	slot     SlotIndex // slot written by the last edge
	lastEdge uint32    // timestamp of the last edge
	sync     SyncState
	seen     bool // at least one edge captured

	completed Frame  // copy of pulses taken when slot 6 was written
	frameSeq  uint32 // incremented for every completed frame
	edges     uint32
	resyncs   uint32 // realignments performed by the handler
	resyncSeq uint32 // frameSeq when the handler last realigned
}

// CaptureSnapshot is a consistent copy of the capture state
type CaptureSnapshot struct {
	Frame    Frame // last completed frame
	FrameSeq uint32
	LastEdge uint32
	Seen     bool
	Sync     SyncState
	Edges    uint32
	Resyncs  uint32
}

// HandleEdge is called on every rising edge with the current timestamp.
// It must stay short: no allocation, no blocking, no I/O.
func (c *EdgeCapture) HandleEdge(now uint32) {
	state := disableInterrupts()

	pulse := now - c.lastEdge // wraps correctly on counter rollover
	c.lastEdge = now
	c.seen = true
	c.edges++

	c.slot = c.slot.Next()
	c.pulses[c.slot] = pulse

	// Last pulse before the pause: a full frame is available
	if c.slot == FramePulses-1 {
		c.completed = c.pulses
		c.frameSeq++
	}

	realigned := false
	if c.sync == OutOfSync && IsPausePulse(pulse) {
		c.pulses[0] = pulse
		c.slot = 0
		c.sync = InSync
		c.resyncs++
		c.resyncSeq = c.frameSeq
		realigned = true
	}

	restoreInterrupts(state)

	if realigned {
		RecordEvent(EvtResync, 0, now, pulse, 0)
	}
}

// RequestResync marks the frame order untrusted. The handler realigns on the
// next pause pulse. frameSeq is the sequence of the misaligned frame; when
// the handler has already realigned after completing it the request is
// stale and ignored. Reports whether sync was cleared.
func (c *EdgeCapture) RequestResync(frameSeq uint32) bool {
	state := disableInterrupts()
	current := c.resyncs == 0 || int32(frameSeq-c.resyncSeq) > 0
	if current {
		c.sync = OutOfSync
	}
	restoreInterrupts(state)
	return current
}

// Snapshot copies the shared state inside one critical section
func (c *EdgeCapture) Snapshot() CaptureSnapshot {
	state := disableInterrupts()
	s := CaptureSnapshot{
		Frame:    c.completed,
		FrameSeq: c.frameSeq,
		LastEdge: c.lastEdge,
		Seen:     c.seen,
		Sync:     c.sync,
		Edges:    c.edges,
		Resyncs:  c.resyncs,
	}
	restoreInterrupts(state)
	return s
}

// Live returns a copy of the live buffer and the slot last written.
// Used by tests and diagnostics; the decoder works on completed frames.
func (c *EdgeCapture) Live() (Frame, SlotIndex) {
	state := disableInterrupts()
	f, i := c.pulses, c.slot
	restoreInterrupts(state)
	return f, i
}

// IsPausePulse reports whether a pulse lies strictly inside the pause range
func IsPausePulse(pulse uint32) bool {
	return pulse > PausePulseMinLength && pulse < PausePulseMaxLength
}

// FrameInSync reports whether slot 0 holds a pause pulse
func FrameInSync(f Frame) bool {
	return f[0] >= PausePulseMinLength
}
