package core

import "ppmpad/protocol"

// StateReport converts the status into its telemetry message
func (s *Status) StateReport() protocol.StateReport {
	r := protocol.StateReport{
		Clock:          s.Time,
		Calibration:    uint8(s.Calibration),
		Pattern:        uint8(s.Pattern),
		Axes:           s.Axes,
		Pulses:         s.Frame,
		Edges:          s.Edges,
		Frames:         s.Frames,
		ResyncRequests: s.ResyncRequests,
		SignalLosses:   s.SignalLosses,
		SendErrors:     s.SendErrors,
	}
	if s.Signal {
		r.Flags |= protocol.StateSignal
	}
	if s.Sync == InSync {
		r.Flags |= protocol.StateInSync
	}
	for i, pressed := range s.Buttons {
		if pressed {
			r.Buttons |= 1 << i
		}
	}
	return r
}

// RangeReport converts the calibration ranges into their telemetry message
func (s *Status) RangeReport(accepted uint32) protocol.RangeReport {
	r := protocol.RangeReport{Accepted: accepted, Rejected: s.Rejected}
	for ch := 1; ch < FramePulses; ch++ {
		r.Ranges[ch-1] = protocol.ChannelRange{Min: s.Ranges[ch].Min, Max: s.Ranges[ch].Max}
	}
	return r
}

// Telemetry emits state and range reports on a fixed schedule
type Telemetry struct {
	writer     *protocol.BlockWriter
	stateEvery uint32
	rangeEvery uint32
	lastState  uint32
	lastRange  uint32
	started    bool
	dropped    uint32
}

// NewTelemetry creates a reporter writing blocks through w
func NewTelemetry(w *protocol.BlockWriter, stateEvery, rangeEvery uint32) *Telemetry {
	return &Telemetry{writer: w, stateEvery: stateEvery, rangeEvery: rangeEvery}
}

// Tick writes whichever reports are due at time now. Returns true when at
// least one block was written.
func (t *Telemetry) Tick(now uint32, d *Decoder) bool {
	if !t.started {
		t.started = true
		t.lastState = now - t.stateEvery
		t.lastRange = now - t.rangeEvery
	}

	wrote := false
	status := d.Status()
	if Elapsed(t.lastState, now) >= t.stateEvery {
		t.lastState = now
		r := status.StateReport()
		wrote = t.write(&r) || wrote
	}
	if Elapsed(t.lastRange, now) >= t.rangeEvery {
		t.lastRange = now
		accepted, _ := d.calibration.Counters()
		r := status.RangeReport(accepted)
		wrote = t.write(&r) || wrote
	}
	return wrote
}

func (t *Telemetry) write(r protocol.Report) bool {
	if err := protocol.WriteReport(t.writer, r); err != nil {
		t.dropped++
		return false
	}
	return true
}

// Dropped returns how many reports did not fit the output buffer
func (t *Telemetry) Dropped() uint32 {
	return t.dropped
}
