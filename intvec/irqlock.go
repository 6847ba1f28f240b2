package intvec

import "sync"

// IRQLock models the interrupt-masking lock of the target environment.
// Lock masks interrupts process-wide and returns the previous mask
// state; Unlock restores that state, so sections nest correctly when an
// outer caller already holds interrupts disabled. The Go rendition
// backs the critical section with a mutex and carries the saved state
// through the returned key.
type IRQLock struct {
	mu    sync.Mutex
	flags uint32
}

const irqMasked = 1

// Lock masks interrupts and returns the mask state to restore on Unlock.
func (l *IRQLock) Lock() uint32 {
	l.mu.Lock()
	prev := l.flags
	l.flags = irqMasked
	return prev
}

// Unlock restores the mask state captured by the matching Lock.
func (l *IRQLock) Unlock(key uint32) {
	l.flags = key
	l.mu.Unlock()
}
