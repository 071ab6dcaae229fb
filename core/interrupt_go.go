//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// On the host the edge handler runs on its own goroutine (gpiocdev event
// handler, tests), so the critical section is a plain mutex. Sections must
// not nest.
var criticalMu sync.Mutex

// disableInterrupts enters the critical section shared with the edge handler
func disableInterrupts() State {
	criticalMu.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state State) {
	criticalMu.Unlock()
}
