package threads

// Compile-time configuration. There is no runtime config file: changing
// any of these requires rebuilding the module.
const (
	// MaxThreads is the fixed number of descriptor slots, indexed [0, MaxThreads).
	MaxThreads = 32

	// PriorityLevels is the number of distinct run-queue priority levels.
	// Higher value means higher urgency. Spawning above PriorityLevels-1
	// clamps to PriorityLevels-1.
	PriorityLevels = 8

	// GuardBytes is the size of the canary region seeded at the low end
	// of every thread's stack.
	GuardBytes = 64

	// MinStackBytes is the minimum usable stack length, exclusive of the
	// guard region: Spawn accepts a stack only if it is at least
	// MinStackBytes+GuardBytes long.
	MinStackBytes = 4096

	// canaryWord is repeated across the guard region. Nonzero so that a
	// zeroed stack (the common case for fresh memory) never reads as a
	// valid, unseeded guard.
	canaryWord uint64 = 0xDEADC0DEFEEDFACE

	// stackAlignment is the architecture's required stack-pointer
	// alignment at a call boundary. x86_64 System V requires 16.
	stackAlignment = 16

	// idleTid is the reserved tid of the always-runnable idle thread.
	idleTid tid = 0
)
