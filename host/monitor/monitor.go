// Package monitor follows the firmware's telemetry stream.
package monitor

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"ppmpad/core"
	"ppmpad/protocol"
)

// Stats counts what the monitor has seen
type Stats struct {
	Reader       protocol.ReaderStats
	States       uint32
	Ranges       uint32
	DecodeErrors uint32
	StaleEvents  uint32
}

// Monitor decodes telemetry blocks and keeps the latest decoder state
type Monitor struct {
	reader     *protocol.BlockReader
	logger     *log.Logger
	staleAfter time.Duration
	now        func() time.Time

	state      protocol.StateReport
	haveState  bool
	ranges     protocol.RangeReport
	haveRanges bool

	lastBlock time.Time
	stale     bool
	stats     Stats
}

// New creates a monitor reading from src. The link is reported stale when
// no block arrived for staleAfter.
func New(src io.Reader, logger *log.Logger, staleAfter time.Duration) *Monitor {
	m := &Monitor{
		reader:     protocol.NewBlockReader(src),
		logger:     logger,
		staleAfter: staleAfter,
		now:        time.Now,
	}
	m.lastBlock = m.now()
	return m
}

// Run steps until ctx is done or the source fails. io.EOF ends the run
// without error.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := m.Step(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Step reads at most one block and updates the link state
func (m *Monitor) Step() error {
	blk, err := m.reader.ReadBlock()
	switch {
	case err == nil:
		m.lastBlock = m.now()
		if m.stale {
			m.stale = false
			m.logger.Info("link up")
		}
		m.Handle(blk.Payload)
	case errors.Is(err, protocol.ErrNoData):
	default:
		return err
	}

	m.checkStale()
	return nil
}

func (m *Monitor) checkStale() {
	if m.stale || m.now().Sub(m.lastBlock) < m.staleAfter {
		return
	}
	m.stale = true
	m.stats.StaleEvents++
	m.logger.Warn("link stale", "silent", m.now().Sub(m.lastBlock).Round(time.Millisecond))
}

// Handle decodes one block payload. Undecodable payloads are counted and
// logged, never fatal.
func (m *Monitor) Handle(payload []byte) {
	report, err := protocol.DecodeReport(payload)
	if err != nil {
		m.stats.DecodeErrors++
		m.logger.Warn("bad report", "err", err)
		return
	}

	switch r := report.(type) {
	case *protocol.StateReport:
		m.stats.States++
		m.logTransitions(r)
		m.state = *r
		m.haveState = true
	case *protocol.RangeReport:
		m.stats.Ranges++
		m.ranges = *r
		m.haveRanges = true
		m.logger.Debug("ranges", rangeKeyvals(r)...)
	}
}

func (m *Monitor) logTransitions(r *protocol.StateReport) {
	prev := m.state
	first := !m.haveState

	if first || prev.Signal() != r.Signal() {
		if r.Signal() {
			m.logger.Info("signal present", "edges", r.Edges)
		} else {
			m.logger.Warn("signal lost", "losses", r.SignalLosses)
		}
	}
	if first || prev.InSync() != r.InSync() {
		sync := core.OutOfSync
		if r.InSync() {
			sync = core.InSync
		}
		m.logger.Info("sync", "state", sync.String(), "resyncs", r.ResyncRequests)
	}
	if first || prev.Calibration != r.Calibration {
		m.logger.Info("calibration", "state", core.CalibrationState(r.Calibration).String())
	}
	if !first && r.SendErrors > prev.SendErrors {
		m.logger.Warn("gamepad send failed", "total", r.SendErrors)
	}
	m.logger.Debug("state",
		"clock", r.Clock,
		"X", r.Axes[core.AxisX],
		"Y", r.Axes[core.AxisY],
		"Rx", r.Axes[core.AxisRx],
		"Ry", r.Axes[core.AxisRy],
		"buttons", r.Buttons,
		"frames", r.Frames)
}

func rangeKeyvals(r *protocol.RangeReport) []interface{} {
	kv := make([]interface{}, 0, 2*len(r.Ranges)+4)
	for i, cr := range r.Ranges {
		kv = append(kv, "ch"+strconv.Itoa(i+1), [2]uint32{cr.Min, cr.Max})
	}
	return append(kv, "accepted", r.Accepted, "rejected", r.Rejected)
}

// State returns the latest state report and whether one was received
func (m *Monitor) State() (protocol.StateReport, bool) {
	return m.state, m.haveState
}

// Ranges returns the latest range report and whether one was received
func (m *Monitor) Ranges() (protocol.RangeReport, bool) {
	return m.ranges, m.haveRanges
}

// Stale reports whether the link has been silent for staleAfter
func (m *Monitor) Stale() bool {
	return m.stale
}

// Stats returns the monitor and stream counters
func (m *Monitor) Stats() Stats {
	s := m.stats
	s.Reader = m.reader.Stats()
	return s
}
