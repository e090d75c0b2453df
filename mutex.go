package threads

import "sync/atomic"

// SpinLock is a minimal mutual-exclusion primitive for user code built
// on top of this core; the scheduler never takes one internally. A
// zero SpinLock is unlocked, so it needs no separate initializer —
// simplified to a pure spin since there is no kernel futex below this
// core to fall back to on contention.
type SpinLock struct {
	held atomic.Bool
}

// Lock spins, yielding the logical CPU between attempts rather than
// busy-waiting across a context switch, so a higher-priority thread
// holding the lock gets a chance to run and release it.
func (s *SpinLock) Lock() {
	for !s.held.CompareAndSwap(false, true) {
		YieldNow()
	}
}

// TryLock attempts to acquire without spinning.
func (s *SpinLock) TryLock() bool {
	return s.held.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking an already-unlocked SpinLock is
// a caller error and is not detected, to keep the uncontended path
// free of extra bookkeeping.
func (s *SpinLock) Unlock() {
	s.held.Store(false)
}
