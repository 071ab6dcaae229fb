package monitor

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppmpad/core"
	"ppmpad/protocol"
)

// chunkReader hands out queued chunks and then reports read timeouts
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) push(b []byte) { r.chunks = append(r.chunks, b) }

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func encode(t *testing.T, reports ...protocol.Report) []byte {
	t.Helper()
	out := protocol.NewScratchOutput(1024)
	w := protocol.NewBlockWriter(out)
	for _, r := range reports {
		require.NoError(t, protocol.WriteReport(w, r))
	}
	return append([]byte(nil), out.Result()...)
}

func newTestMonitor(src io.Reader) (*Monitor, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return New(src, logger, 500*time.Millisecond), &buf
}

func liveState() *protocol.StateReport {
	return &protocol.StateReport{
		Clock:       1000,
		Flags:       protocol.StateSignal | protocol.StateInSync,
		Calibration: uint8(core.CalibrationRunning),
		Axes:        [protocol.ReportAxes]uint8{0, 128, 128, 255},
		Buttons:     0b10,
		Edges:       70,
		Frames:      9,
	}
}

func TestRunDecodesStream(t *testing.T) {
	lost := liveState()
	lost.Flags = 0
	lost.SignalLosses = 1
	ranges := &protocol.RangeReport{Accepted: 40, Rejected: 2}
	ranges.Ranges[0] = protocol.ChannelRange{Min: 1000, Max: 2000}

	m, logs := newTestMonitor(bytes.NewReader(encode(t, liveState(), ranges, lost)))
	require.NoError(t, m.Run(context.Background()))

	state, ok := m.State()
	require.True(t, ok)
	assert.False(t, state.Signal())
	assert.Equal(t, uint32(1), state.SignalLosses)

	r, ok := m.Ranges()
	require.True(t, ok)
	assert.Equal(t, uint32(2000), r.Ranges[0].Max)

	stats := m.Stats()
	assert.Equal(t, uint32(2), stats.States)
	assert.Equal(t, uint32(1), stats.Ranges)
	assert.Equal(t, uint32(3), stats.Reader.Blocks)
	assert.Zero(t, stats.DecodeErrors)

	out := logs.String()
	assert.Contains(t, out, "signal present")
	assert.Contains(t, out, "signal lost")
	assert.Contains(t, out, "calibrating")
	assert.Contains(t, out, "in-sync")
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _ := newTestMonitor(&chunkReader{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, m.Run(ctx))
}

func TestHandleCountsBadReports(t *testing.T) {
	m, logs := newTestMonitor(&chunkReader{})

	m.Handle([]byte{9})
	m.Handle([]byte{protocol.MsgState, 0x80})

	assert.Equal(t, uint32(2), m.Stats().DecodeErrors)
	_, ok := m.State()
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "bad report")
}

func TestStaleAndRecovery(t *testing.T) {
	src := &chunkReader{}
	m, logs := newTestMonitor(src)
	now := time.Unix(100, 0)
	m.now = func() time.Time { return now }
	m.lastBlock = now

	require.NoError(t, m.Step())
	assert.False(t, m.Stale())

	now = now.Add(600 * time.Millisecond)
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	assert.True(t, m.Stale())
	assert.Equal(t, uint32(1), m.Stats().StaleEvents)

	src.push(encode(t, liveState()))
	require.NoError(t, m.Step())
	assert.False(t, m.Stale())
	assert.Contains(t, logs.String(), "link stale")
	assert.Contains(t, logs.String(), "link up")
}

func TestTransitionsLoggedOnce(t *testing.T) {
	m, logs := newTestMonitor(&chunkReader{})
	for i := 0; i < 3; i++ {
		m.Handle(encodePayload(t, liveState()))
	}
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("signal present")))
}

func encodePayload(t *testing.T, r protocol.Report) []byte {
	t.Helper()
	out := protocol.NewScratchOutput(protocol.BlockLengthMax)
	r.Encode(out)
	return append([]byte(nil), out.Result()...)
}
