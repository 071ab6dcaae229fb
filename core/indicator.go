package core

// Pattern selects what the status light shows
type Pattern uint8

const (
	PatternOff Pattern = iota
	PatternActive
	PatternCalibrating
	PatternSignalLost
)

func (p Pattern) String() string {
	switch p {
	case PatternOff:
		return "off"
	case PatternActive:
		return "active"
	case PatternCalibrating:
		return "calibrating"
	case PatternSignalLost:
		return "signal-lost"
	default:
		return "unknown"
	}
}

// BlinkStep is the time quantum of the blink patterns (100ms)
const BlinkStep = 100000

// IndicatorLevel returns the light level for pattern p at time now.
// Pure function of elapsed time so the poll loop needs no timer.
//
//	signal lost:  on 300ms / off 100ms (400ms period)
//	calibrating:  off 100ms / on 100ms (200ms period)
func IndicatorLevel(p Pattern, now uint32) bool {
	step := now / BlinkStep
	switch p {
	case PatternSignalLost:
		return step%4 != 0
	case PatternCalibrating:
		return step%2 == 1
	case PatternOff, PatternActive:
		return false
	default:
		return false
	}
}
