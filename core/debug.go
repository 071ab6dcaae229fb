package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a decoder event for post-mortem analysis
type Event struct {
	EventType uint8  // Event type code
	Channel   uint8  // Frame slot, axis or 0
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtResync          = 1 // handler realigned on a pause pulse
	EvtSyncLost        = 2 // completed frame failed the pause check
	EvtSignalLost      = 3 // no edges for SignalTimeout
	EvtSignalRestored  = 4 // edges resumed
	EvtCalibrationDone = 5 // calibration window elapsed
	EvtSendFailed      = 6 // gamepad SendUpdate returned an error
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer (non-blocking, safe from the edge handler)
	eventRing     [EventRingSize]Event
	eventRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger...
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message when the channel is full or async output is not running
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordEvent stores an event in the ring buffer. Never blocks, never
// allocates; callable from the edge handler outside its own critical section.
func RecordEvent(eventType, channel uint8, clock, value1, value2 uint32) {
	state := disableInterrupts()
	idx := eventRingHead
	eventRing[idx] = Event{
		EventType: eventType,
		Channel:   channel,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
	restoreInterrupts(state)
}

// Events returns the recorded events, oldest first
func Events() []Event {
	state := disableInterrupts()
	ring, head := eventRing, eventRingHead
	restoreInterrupts(state)

	out := make([]Event, 0, EventRingSize)
	for i := uint8(0); i < EventRingSize; i++ {
		evt := ring[(head+i)%EventRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns a short label for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtResync:
		return "RESYNC"
	case EvtSyncLost:
		return "SYNC_LOST"
	case EvtSignalLost:
		return "SIGNAL_LOST"
	case EvtSignalRestored:
		return "SIGNAL_OK"
	case EvtCalibrationDone:
		return "CALIBRATED"
	case EvtSendFailed:
		return "SEND_FAILED!"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing writes the ring buffer through the debug writer
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENT] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENT] " + EventName(evt.EventType) +
			" ch=" + utoa(uint32(evt.Channel)) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EVENT] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	state := disableInterrupts()
	eventRing = [EventRingSize]Event{}
	eventRingHead = 0
	restoreInterrupts(state)
}
