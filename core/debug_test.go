package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRingKeepsNewest(t *testing.T) {
	ClearEventRing()
	for i := uint32(0); i < EventRingSize+5; i++ {
		RecordEvent(EvtSyncLost, 0, i, i, 0)
	}

	events := Events()
	assert.Len(t, events, EventRingSize)
	assert.Equal(t, uint32(5), events[0].Clock)
	assert.Equal(t, uint32(EventRingSize+4), events[len(events)-1].Clock)
}

func TestDumpEventRing(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	ClearEventRing()
	RecordEvent(EvtSignalLost, 0, 1234, 250001, 0)
	DumpEventRing()

	assert.Len(t, lines, 3)
	assert.Equal(t, "[EVENT] SIGNAL_LOST ch=0 clock=1234 v1=250001 v2=0", lines[1])
}

func TestDebugPrintlnGated(t *testing.T) {
	var out strings.Builder
	SetDebugWriter(func(s string) { out.WriteString(s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	DebugPrintln("shown")

	assert.Equal(t, "shown", out.String())
	assert.True(t, IsDebugEnabled())
}

func TestUtoa(t *testing.T) {
	assert.Equal(t, "0", utoa(0))
	assert.Equal(t, "7", utoa(7))
	assert.Equal(t, "4294967295", utoa(0xFFFFFFFF))
}
