package core

// SignalTimeout is the edge staleness after which the signal is lost
const SignalTimeout = SignalLossFrames * FrameMaxLength

// SignalPresent reports whether edges are still arriving. Before the first
// edge the signal counts as absent. An edge stamped after now (the handler
// ran between the clock read and the snapshot) counts as present.
func SignalPresent(now, lastEdge uint32, seen bool) bool {
	if !seen {
		return false
	}
	elapsed := Elapsed(lastEdge, now)
	return elapsed <= SignalTimeout || elapsed > 1<<31
}
