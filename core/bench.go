package core

// Bench sweep geometry
const (
	BenchFrameLength = 22500 // µs, pause absorbs the remainder
	BenchSweepFrames = 200   // frames per sweep half period
	benchLow         = 1000
	benchHigh        = 2000
)

// BenchFrame returns frame n of a synthetic test signal. Channel 1..4 sweep
// between 1000 and 2000 µs with a phase offset per channel, channels 5 and 6
// toggle every half period. The frame length is constant.
func BenchFrame(n uint32) Frame {
	var f Frame
	sum := uint32(0)
	for ch := 1; ch < FramePulses; ch++ {
		var p uint32
		phase := n + uint32(ch-1)*BenchSweepFrames/2
		if ch < FirstButtonChannel {
			p = triangle(phase)
		} else if (phase/BenchSweepFrames)%2 == 0 {
			p = benchLow
		} else {
			p = benchHigh
		}
		f[ch] = p
		sum += p
	}
	f[0] = BenchFrameLength - sum
	return f
}

// triangle maps n onto benchLow..benchHigh..benchLow over two half periods
func triangle(n uint32) uint32 {
	pos := n % (2 * BenchSweepFrames)
	if pos >= BenchSweepFrames {
		pos = 2*BenchSweepFrames - pos
	}
	return benchLow + pos*(benchHigh-benchLow)/BenchSweepFrames
}
