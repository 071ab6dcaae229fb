package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppmpad/core"
)

var _ core.GamepadDriver = (*LogGamepad)(nil)

func newTestGamepad() (*LogGamepad, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogGamepad(log.New(&buf)), &buf
}

func TestLogGamepadLogsOnlyChanges(t *testing.T) {
	g, buf := newTestGamepad()

	g.SetAxis(core.AxisX, 255)
	g.SetButton(1, true)
	require.NoError(t, g.SendUpdate())
	require.NoError(t, g.SendUpdate())

	g.SetAxis(core.AxisY, 7)
	require.NoError(t, g.SendUpdate())

	sends, changes := g.Counters()
	assert.Equal(t, uint32(3), sends)
	assert.Equal(t, uint32(2), changes)
	assert.Equal(t, 2, strings.Count(buf.String(), "gamepad"))
	assert.Contains(t, buf.String(), "X=255")
	assert.Contains(t, buf.String(), "B1=true")
	assert.Contains(t, buf.String(), "Y=7")
}

func TestLogGamepadFirstSendAlwaysLogs(t *testing.T) {
	g, buf := newTestGamepad()
	require.NoError(t, g.SendUpdate())
	assert.Contains(t, buf.String(), "gamepad")
}

func TestLogGamepadIgnoresOutOfRange(t *testing.T) {
	g, _ := newTestGamepad()
	g.SetAxis(core.AxisCount, 9)
	g.SetButton(core.ButtonCount, true)
	require.NoError(t, g.SendUpdate())
	assert.Equal(t, Snapshot{}, g.Last())
}

func TestLogGamepadWithDecoder(t *testing.T) {
	g, _ := newTestGamepad()
	d := core.NewDecoder(core.DefaultConfig(), nil, g, nil)
	d.Start()
	d.Poll()

	sends, _ := g.Counters()
	assert.Equal(t, uint32(1), sends, "heartbeat send on every poll")
}
