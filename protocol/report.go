package protocol

import (
	"errors"
	"fmt"
)

var ErrUnknownMessage = errors.New("unknown message id")

// Report is a decoded telemetry message
type Report interface {
	MessageID() uint32
	Encode(output OutputBuffer)
}

// StateReport flags
const (
	StateSignal = 1 << 0
	StateInSync = 1 << 1
)

// Report geometry; mirrors the decoder's frame layout
const (
	ReportPulses   = 7
	ReportAxes     = 4
	ReportButtons  = 2
	ReportChannels = ReportPulses - 1
)

// StateReport is the periodic decoder state message (MsgState)
type StateReport struct {
	Clock       uint32
	Flags       uint8
	Calibration uint8 // 0 idle, 1 calibrating, 2 calibrated
	Pattern     uint8
	Axes        [ReportAxes]uint8
	Buttons     uint8 // bit n = button n pressed
	Pulses      [ReportPulses]uint32

	Edges          uint32
	Frames         uint32
	ResyncRequests uint32
	SignalLosses   uint32
	SendErrors     uint32
}

func (r *StateReport) MessageID() uint32 { return MsgState }

// Signal reports whether the decoder saw a live signal
func (r *StateReport) Signal() bool { return r.Flags&StateSignal != 0 }

// InSync reports whether the frame order was trusted
func (r *StateReport) InSync() bool { return r.Flags&StateInSync != 0 }

// Button reports the state of button n
func (r *StateReport) Button(n int) bool { return r.Buttons&(1<<n) != 0 }

func (r *StateReport) Encode(output OutputBuffer) {
	EncodeVLQUint(output, MsgState)
	EncodeVLQUint(output, r.Clock)
	EncodeVLQUint(output, uint32(r.Flags))
	EncodeVLQUint(output, uint32(r.Calibration))
	EncodeVLQUint(output, uint32(r.Pattern))
	for _, v := range r.Axes {
		EncodeVLQUint(output, uint32(v))
	}
	EncodeVLQUint(output, uint32(r.Buttons))
	for _, p := range r.Pulses {
		EncodeVLQUint(output, p)
	}
	EncodeVLQUint(output, r.Edges)
	EncodeVLQUint(output, r.Frames)
	EncodeVLQUint(output, r.ResyncRequests)
	EncodeVLQUint(output, r.SignalLosses)
	EncodeVLQUint(output, r.SendErrors)
}

func (r *StateReport) decode(data *[]byte) error {
	fields := []*uint32{&r.Clock}
	var flags, calib, pattern, buttons uint32
	var axes [ReportAxes]uint32
	fields = append(fields, &flags, &calib, &pattern)
	for i := range axes {
		fields = append(fields, &axes[i])
	}
	fields = append(fields, &buttons)
	for i := range r.Pulses {
		fields = append(fields, &r.Pulses[i])
	}
	fields = append(fields, &r.Edges, &r.Frames, &r.ResyncRequests, &r.SignalLosses, &r.SendErrors)

	if err := decodeFields(data, fields); err != nil {
		return err
	}
	r.Flags = uint8(flags)
	r.Calibration = uint8(calib)
	r.Pattern = uint8(pattern)
	for i, v := range axes {
		r.Axes[i] = uint8(v)
	}
	r.Buttons = uint8(buttons)
	return nil
}

// ChannelRange is the calibrated span of one channel
type ChannelRange struct {
	Min uint32
	Max uint32
}

// RangeReport carries the calibration ranges of channels 1..6 (MsgRanges)
type RangeReport struct {
	Ranges   [ReportChannels]ChannelRange
	Accepted uint32
	Rejected uint32
}

func (r *RangeReport) MessageID() uint32 { return MsgRanges }

func (r *RangeReport) Encode(output OutputBuffer) {
	EncodeVLQUint(output, MsgRanges)
	for _, cr := range r.Ranges {
		EncodeVLQUint(output, cr.Min)
		EncodeVLQUint(output, cr.Max)
	}
	EncodeVLQUint(output, r.Accepted)
	EncodeVLQUint(output, r.Rejected)
}

func (r *RangeReport) decode(data *[]byte) error {
	fields := make([]*uint32, 0, 2*ReportChannels+2)
	for i := range r.Ranges {
		fields = append(fields, &r.Ranges[i].Min, &r.Ranges[i].Max)
	}
	fields = append(fields, &r.Accepted, &r.Rejected)
	return decodeFields(data, fields)
}

func decodeFields(data *[]byte, fields []*uint32) error {
	for i, f := range fields {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		*f = v
	}
	return nil
}

// DecodeReport parses a block payload into a Report
func DecodeReport(payload []byte) (Report, error) {
	data := payload
	id, err := DecodeVLQUint(&data)
	if err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}

	switch id {
	case MsgState:
		r := &StateReport{}
		if err := r.decode(&data); err != nil {
			return nil, fmt.Errorf("state report: %w", err)
		}
		return r, nil
	case MsgRanges:
		r := &RangeReport{}
		if err := r.decode(&data); err != nil {
			return nil, fmt.Errorf("range report: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
	}
}

// WriteReport frames a report as one block
func WriteReport(w *BlockWriter, r Report) error {
	return w.WriteBlock(r.Encode)
}
