package core

// OutputFilter suppresses axis updates caused by capture jitter.
// It compares raw pulse widths rather than mapped values so the 0..255
// quantization does not amplify sub-step noise.
type OutputFilter struct {
	floor     uint32
	forwarded [AxisCount]uint32 // raw pulse last forwarded per axis
	primed    [AxisCount]bool
}

// NewOutputFilter creates a filter with the given noise floor in µs
func NewOutputFilter(floor uint32) *OutputFilter {
	return &OutputFilter{floor: floor}
}

// Accept reports whether pulse should be forwarded for axis and, if so,
// remembers it as the new reference.
func (f *OutputFilter) Accept(axis Axis, pulse uint32) bool {
	if axis >= AxisCount {
		return false
	}
	if f.primed[axis] && absDiff(pulse, f.forwarded[axis]) <= f.floor {
		return false
	}
	f.forwarded[axis] = pulse
	f.primed[axis] = true
	return true
}

// Reset forgets all references so the next frame forwards every axis
func (f *OutputFilter) Reset() {
	f.primed = [AxisCount]bool{}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
