package threads

import "errors"

// Errors are values: every public operation reports one of these rather
// than panicking, except on contract violations (see halt.go).
var (
	ErrTooManyThreads      = errors.New("threads: no free descriptor slot")
	ErrStackTooSmall       = errors.New("threads: stack shorter than MinStackBytes+GuardBytes")
	ErrBadAlignment        = errors.New("threads: stack pointer does not satisfy architecture alignment")
	ErrInvalidTid          = errors.New("threads: tid does not name a live descriptor")
	ErrAlreadyJoined       = errors.New("threads: thread already has a registered joiner")
	ErrDeadlockRefused     = errors.New("threads: a thread cannot join itself")
	ErrPreemptionUnsupported = errors.New("threads: preemption source unavailable on this platform")
	ErrQueueFull           = errors.New("threads: run-queue level is full")
	ErrAlreadyQueued       = errors.New("threads: tid is already on the run-queue")
)
