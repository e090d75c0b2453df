package threads

import "sync/atomic"

// tid is a small integer index into the descriptor table: a
// non-owning reference. The table is the only owner of a descriptor,
// and indices (not pointers) are what joiners, run-queue entries, and
// the "current" cursor hold onto. That sidesteps any joiner<->joinee
// cyclic-reference problem a pointer-based design would have to solve.
type tid int32

// noTid marks "no thread" in the join slot. CurrentTid also reads it as
// "no current thread", though the scheduler never stores it there.
const noTid tid = -1

// state is one position in the descriptor lifecycle:
// Empty -> Ready -> Running -> {Ready, Exited} -> Empty.
// Blocked is reserved for a true blocking-wait state; the core itself
// never transitions a descriptor into it (see Join, which uses it only
// as a self-parked marker, not a target of scheduler-driven transitions).
type state uint32

const (
	stateEmpty state = iota
	stateReady
	stateRunning
	stateBlocked
	stateExited
	// stateReserving is a transient state held only between the
	// compare-and-swap that claims a slot in Spawn and the point the
	// slot is published as Ready. Not a user-visible state and never
	// observed outside Spawn.
	stateReserving
)

func (s state) String() string {
	switch s {
	case stateEmpty:
		return "Empty"
	case stateReady:
		return "Ready"
	case stateRunning:
		return "Running"
	case stateBlocked:
		return "Blocked"
	case stateExited:
		return "Exited"
	case stateReserving:
		return "Reserving"
	default:
		return "Invalid"
	}
}

// stackRegion describes the caller-provided stack memory backing one
// thread. Stack allocation is external to the core; it only ever reads
// bounds and seeds/checks the guard zone.
type stackRegion struct {
	base uintptr
	len  uintptr
}

func (s stackRegion) top() uintptr    { return s.base + s.len }
func (s stackRegion) guardLo() uintptr { return s.base }
func (s stackRegion) guardHi() uintptr { return s.base + GuardBytes }

// descriptor is one fixed-size thread record. The table of MaxThreads
// descriptors is process-wide state with a deterministic initialization
// point (SchedulerInit); each slot is logically owned by its thread
// while non-Empty, and by the scheduler between transitions.
type descriptor struct {
	st atomic.Uint32 // state, CAS'd; the synchronization point for this slot

	priority uint32
	ctx      any // backend-specific register image; nil until first needed
	stack    stackRegion
	entry    func()

	fpDirty atomic.Bool // conservatively true unless a backend trap clears it

	joiner   atomic.Int32 // tid of the registered joiner, or noTid
	exitCode int32

	watermark uintptr // lowest observed SP, for stack_status diagnostics

	onq atomic.Bool // true while the slot is linked into the run-queue
}

func (d *descriptor) state() state { return state(d.st.Load()) }

func (d *descriptor) setState(s state) { d.st.Store(uint32(s)) }

// casState attempts old -> new and reports success.
func (d *descriptor) casState(old, new state) bool {
	return d.st.CompareAndSwap(uint32(old), uint32(new))
}

// seedGuard writes GuardBytes of the fixed canary pattern at the stack's
// low end.
func seedGuard(s stackRegion) {
	words := GuardBytes / 8
	base := s.base
	for i := 0; i < words; i++ {
		storeWordAt(base+uintptr(i*8), canaryWord)
	}
}

// checkGuard reports whether the canary region still reads as seeded.
// A mismatch means stack overflow into the guard zone.
func checkGuard(s stackRegion) bool {
	words := GuardBytes / 8
	base := s.base
	for i := 0; i < words; i++ {
		if loadWordAt(base+uintptr(i*8)) != canaryWord {
			return false
		}
	}
	return true
}
