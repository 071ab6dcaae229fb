// PPM decode pipeline: synchronize, calibrate, map, filter, forward.
package core

// Status is a snapshot of the decoder for telemetry and diagnostics
type Status struct {
	Time        uint32
	Signal      bool
	Sync        SyncState
	Calibration CalibrationState
	Pattern     Pattern

	Frame   Frame // last processed frame
	Ranges  Ranges
	Axes    [AxisCount]uint8
	Buttons [ButtonCount]bool

	Edges          uint32
	Frames         uint32 // frames forwarded to the gamepad
	ResyncRequests uint32
	SignalLosses   uint32
	SendErrors     uint32
	Rejected       uint32 // calibration samples dropped as noise
}

// Decoder runs the polling side of the pipeline. HandleEdge is the only
// method that may be called from interrupt context.
type Decoder struct {
	cfg       Config
	clock     Clock
	gamepad   GamepadDriver
	indicator IndicatorDriver

	capture     EdgeCapture
	calibration *Calibration
	filter      *OutputFilter

	lastSeq     uint32 // sequence of the last completed frame consumed
	signalLost  bool
	lostAtEdges uint32 // edge count when the signal was declared lost

	status Status
}

// NewDecoder wires the pipeline. indicator may be nil.
func NewDecoder(cfg Config, clock Clock, gamepad GamepadDriver, indicator IndicatorDriver) *Decoder {
	if clock == nil {
		clock = SystemClock{}
	}
	d := &Decoder{
		cfg:         cfg,
		clock:       clock,
		gamepad:     gamepad,
		indicator:   indicator,
		calibration: NewCalibration(cfg.CalibrationWindow, cfg.NoiseRejection),
		filter:      NewOutputFilter(cfg.JitterFloor),
		signalLost:  true,
	}
	d.status.Ranges = d.calibration.Ranges()
	return d
}

// Start begins the calibration window. Call once after the edge interrupt
// has been registered.
func (d *Decoder) Start() {
	d.calibration.Start(d.clock.Micros())
	d.status.Calibration = d.calibration.State()
}

// HandleEdge forwards a rising edge timestamp to the capture buffer.
// Interrupt context.
func (d *Decoder) HandleEdge(now uint32) {
	d.capture.HandleEdge(now)
}

// Capture exposes the edge capture for diagnostics
func (d *Decoder) Capture() *EdgeCapture {
	return &d.capture
}

// Poll runs one iteration of the main loop. It never blocks.
func (d *Decoder) Poll() {
	// Snapshot before reading the clock so no captured edge is newer than now
	snap := d.capture.Snapshot()
	now := d.clock.Micros()
	d.status.Time = now

	// Heartbeat: publish the current snapshot every iteration
	if err := d.gamepad.SendUpdate(); err != nil {
		d.status.SendErrors++
		RecordEvent(EvtSendFailed, 0, now, d.status.SendErrors, 0)
		DebugAsync("gamepad send failed: " + err.Error())
	}

	if d.calibration.Advance(now) {
		RecordEvent(EvtCalibrationDone, 0, now, 0, 0)
		DebugAsync("calibration done")
	}
	d.status.Calibration = d.calibration.State()

	d.status.Edges = snap.Edges
	d.status.Sync = snap.Sync

	if !d.updateSignal(now, snap) {
		d.show(PatternSignalLost, now)
		return
	}

	if snap.FrameSeq == d.lastSeq {
		d.show(d.idlePattern(), now)
		return
	}
	d.lastSeq = snap.FrameSeq

	if !FrameInSync(snap.Frame) {
		// Skipped either way; a stale request leaves the handler's sync alone
		if d.capture.RequestResync(snap.FrameSeq) {
			d.status.Sync = OutOfSync
			d.status.ResyncRequests++
			RecordEvent(EvtSyncLost, 0, now, snap.Frame[0], 0)
		}
		d.show(d.idlePattern(), now)
		return
	}

	if d.calibration.State() == CalibrationRunning {
		d.calibration.RecordSample(snap.Frame)
		d.status.Ranges = d.calibration.Ranges()
		_, d.status.Rejected = d.calibration.Counters()
	}

	d.forward(snap.Frame)
	d.show(d.idlePattern(), now)
}

// updateSignal tracks signal presence transitions. Once lost, the signal
// only comes back when a new edge has been captured.
func (d *Decoder) updateSignal(now uint32, snap CaptureSnapshot) bool {
	present := SignalPresent(now, snap.LastEdge, snap.Seen)
	if d.signalLost && snap.Edges == d.lostAtEdges {
		present = false
	}

	switch {
	case present && d.signalLost:
		d.signalLost = false
		RecordEvent(EvtSignalRestored, 0, now, snap.Edges, 0)
		DebugAsync("signal restored")
	case !present && !d.signalLost:
		d.signalLost = true
		d.lostAtEdges = snap.Edges
		d.status.SignalLosses++
		// Stale references would suppress the first frames after recovery
		d.filter.Reset()
		RecordEvent(EvtSignalLost, 0, now, Elapsed(snap.LastEdge, now), 0)
		DebugAsync("signal lost")
	}
	if !present {
		d.lostAtEdges = snap.Edges
	}
	d.status.Signal = present
	return present
}

// forward maps a synchronized frame onto the gamepad
func (d *Decoder) forward(f Frame) {
	ranges := d.calibration.Ranges()
	for axis := Axis(0); axis < AxisCount; axis++ {
		ch := d.cfg.AxisChannels[axis]
		if !d.filter.Accept(axis, f[ch]) {
			continue
		}
		v := mapChannel(int(ch), f, &ranges, d.cfg.ButtonThreshold)
		d.gamepad.SetAxis(axis, v)
		d.status.Axes[axis] = v
	}

	// Buttons are binary and low-noise; no filtering
	for b := uint8(0); b < ButtonCount; b++ {
		pressed := mapChannel(int(d.cfg.ButtonChannels[b]), f, &ranges, d.cfg.ButtonThreshold) != 0
		if d.cfg.InvertButtons {
			pressed = !pressed
		}
		d.gamepad.SetButton(b, pressed)
		d.status.Buttons[b] = pressed
	}

	d.status.Frame = f
	d.status.Frames++
}

func (d *Decoder) idlePattern() Pattern {
	switch d.calibration.State() {
	case CalibrationRunning:
		return PatternCalibrating
	case CalibrationIdle, CalibrationDone:
		return PatternActive
	default:
		return PatternActive
	}
}

func (d *Decoder) show(p Pattern, now uint32) {
	d.status.Pattern = p
	if d.indicator != nil {
		d.indicator.SetIndicator(IndicatorLevel(p, now))
	}
}

// Status returns a copy of the latest decoder status
func (d *Decoder) Status() Status {
	return d.status
}

// Config returns the configuration the decoder was built with
func (d *Decoder) Config() Config {
	return d.cfg
}
