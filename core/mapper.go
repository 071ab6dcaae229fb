package core

// Axis output range
const (
	AxisMin     = 0
	AxisMax     = 255
	AxisNeutral = 128 // reported while a channel has no calibration spread
)

func isAxisChannel(ch int) bool {
	return ch >= FirstAxisChannel && ch < FirstAxisChannel+AxisChannels
}

func isButtonChannel(ch int) bool {
	return ch >= FirstButtonChannel && ch < FirstButtonChannel+ButtonChannels
}

// MapChannel converts the pulse of channel ch into an output value using the
// default button threshold. Axis channels yield 0..255, button channels 0 or
// 1, anything else 0.
func MapChannel(ch int, f Frame, r *Ranges) uint8 {
	return mapChannel(ch, f, r, DefaultButtonThreshold)
}

func mapChannel(ch int, f Frame, r *Ranges, buttonThreshold uint32) uint8 {
	switch {
	case isAxisChannel(ch):
		return scaleAxis(f[ch], r[ch])
	case isButtonChannel(ch):
		if f[ch] > buttonThreshold {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// scaleAxis maps pulse onto 0..255 across r, rounding to nearest.
// Pulses outside the range are clamped.
func scaleAxis(pulse uint32, r Range) uint8 {
	span := r.Span()
	if span == 0 {
		return AxisNeutral
	}
	pulse = constrain(pulse, r.Min, r.Max)
	offset := uint64(pulse - r.Min)
	// round(255*offset/span) in integer arithmetic
	v := (2*AxisMax*offset + uint64(span)) / (2 * uint64(span))
	return uint8(v)
}

// constrain limits value to [lo, hi]
func constrain(value, lo, hi uint32) uint32 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
