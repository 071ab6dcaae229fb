//go:build linux

// Package gpio feeds the decoder from a Linux GPIO character device.
package gpio

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"
)

// EdgeHandler receives rising edge timestamps in microseconds
type EdgeHandler interface {
	HandleEdge(now uint32)
}

// EdgeSource delivers rising edges of one input line to an EdgeHandler.
// The handler runs on the gpiocdev event goroutine.
type EdgeSource struct {
	line    *gpiocdev.Line
	handler EdgeHandler
	edges   atomic.Uint32
	seqGaps atomic.Uint32
	lastSeq uint32
}

// OpenEdgeSource requests offset on chip as a pulled-up input with rising
// edge events. Timestamps come from CLOCK_MONOTONIC, the clock read by
// MonotonicClock.
func OpenEdgeSource(chip string, offset int, handler EdgeHandler) (*EdgeSource, error) {
	s := &EdgeSource{handler: handler}
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		if errors.Is(err, unix.EINVAL) {
			return nil, fmt.Errorf("request %s:%d: %w (pull-up bias needs Linux 5.5 or later)", chip, offset, err)
		}
		return nil, fmt.Errorf("request %s:%d: %w", chip, offset, err)
	}
	s.line = line
	return s, nil
}

func (s *EdgeSource) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	// Kernel buffer overflow shows up as a jump in the line sequence number
	if s.lastSeq != 0 && evt.LineSeqno != s.lastSeq+1 {
		s.seqGaps.Add(1)
	}
	s.lastSeq = evt.LineSeqno
	s.edges.Add(1)
	s.handler.HandleEdge(uint32(evt.Timestamp.Microseconds()))
}

// Edges returns the number of rising edges delivered
func (s *EdgeSource) Edges() uint32 {
	return s.edges.Load()
}

// Overruns returns how many times the kernel dropped events
func (s *EdgeSource) Overruns() uint32 {
	return s.seqGaps.Load()
}

// Close releases the line
func (s *EdgeSource) Close() error {
	return s.line.Close()
}
