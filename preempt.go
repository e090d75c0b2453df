package threads

import "sync/atomic"

// tickCount is incremented by onTick for diagnostics.
var tickCount atomic.Uint64

// inHandler guards against a second tick landing while one is still
// being processed; reentrancy is ignored rather than queued or retried.
var inHandler atomic.Bool

// onTick is the only entry point a preemption Source may call, and the
// only code in this package allowed to run from an asynchronous
// context. It performs exactly two actions — a relaxed store of
// needsResched and a relaxed increment of the tick counter — and must
// never acquire a lock, allocate, or touch the run-queue.
//
//go:nosplit
func onTick() {
	if !inHandler.CompareAndSwap(false, true) {
		return
	}
	sched.needsResched.Store(true)
	tickCount.Add(1)
	inHandler.Store(false)
}

// TickCount returns the number of ticks observed so far. Diagnostic
// only; never consulted by the scheduler.
func TickCount() uint64 { return tickCount.Load() }

// Source is an external collaborator that calls onTick periodically
// from an asynchronous context that may interrupt any thread, including
// while it holds the run-queue's atomic invariants mid-update. The
// core ships one POSIX realization (preempt_unix.go); a bare-metal
// port would instead drive onTick from a timer IRQ vector.
type Source interface {
	// Start begins delivering ticks at roughly the given interval.
	// Repeated calls after a successful Start are idempotent.
	Start(intervalMicros int64) error
	// Stop disables further ticks. It does not clear the needs-resched
	// flag; PreemptionDisable does that after calling Stop.
	Stop()
}

var activeSource Source

// PreemptionEnable starts the process-wide preemption source.
// Idempotent: a second call while already running is a no-op.
func PreemptionEnable(intervalMicros int64) error {
	if activeSource == nil {
		return ErrPreemptionUnsupported
	}
	return activeSource.Start(intervalMicros)
}

// PreemptionDisable stops the preemption source and clears the flag.
func PreemptionDisable() {
	if activeSource == nil {
		return
	}
	activeSource.Stop()
	sched.needsResched.Store(false)
}
