package threads

import (
	"sync/atomic"
	"unsafe"
)

// sched is the process-wide scheduler singleton: a global mutable
// state with an explicit initialization point (SchedulerInit), all
// access through atomic operations on its fields rather than a
// reader-writer lock, since the hot path (scheduleOnce) must stay
// lock-free across a context switch.
type scheduler struct {
	descs [MaxThreads]descriptor
	rq    runQueue

	current      atomic.Int32 // tid of the Running descriptor, or noTid
	needsResched atomic.Bool

	initialized atomic.Bool
}

var sched scheduler

// SchedulerInit establishes the descriptor table, the idle thread (tid
// 0) and an empty run-queue. Must be called once before any other
// operation.
//
// tid 0 is never given a fresh register image here. Instead it adopts
// whatever call stack invokes SchedulerInit as its own: the first time
// anything else is scheduled in, scheduleOnce saves the live caller's
// registers into tid 0's descriptor exactly as it would for any other
// preempted thread, and that save is what makes falling back to tid 0
// later resume the original caller rather than spin forever. A caller
// that instead wants tid 0 to run a dedicated idle loop that never
// returns to the original call stack uses RunForever.
func SchedulerInit() {
	if !sched.initialized.CompareAndSwap(false, true) {
		return
	}
	for i := range sched.descs {
		sched.descs[i].setState(stateEmpty)
		sched.descs[i].joiner.Store(int32(noTid))
	}

	d := &sched.descs[idleTid]
	d.priority = 0
	d.entry = idleLoop
	d.stack = idleStack()
	seedGuard(d.stack)
	d.fpDirty.Store(true) // conservative default, as for spawned threads
	d.setState(stateRunning)
	sched.current.Store(int32(idleTid))
	// Deliberately never enqueued: the idle thread is pickNext's
	// fallback when the run-queue is empty, not a run-queue entry.
}

// RunForever switches the calling goroutine into the idle thread's own
// spin-and-checkpoint loop and never returns. Only meaningful if called
// while tid 0 is current and idle (i.e. nothing else is ready); a
// freestanding embedding calls this once after its initial Spawn calls
// instead of relying on the default behavior of regaining control once
// the run-queue drains.
func RunForever() {
	cur, ok := CurrentTid()
	if !ok || cur != idleTid {
		halt("RunForever", idleTid, "must be called with tid 0 current")
	}
	d := &sched.descs[idleTid]
	d.ctx = archInitFrame(d.stack)
	var discard any
	archSwitchTo(&discard, &d.ctx)
}

// CurrentTid reports the running thread. It does not report ok=false
// before the first schedule: SchedulerInit makes tid 0 current, and the
// zero-value cursor before SchedulerInit also reads as tid 0. ok is
// false only if the cursor holds noTid, which the scheduler never stores.
func CurrentTid() (t int, ok bool) {
	c := sched.current.Load()
	if c < 0 {
		return 0, false
	}
	return int(c), true
}

// Spawn reserves a descriptor slot, seeds the guard zone, builds the
// initial register image, and enqueues the new thread Ready.
func Spawn(stackBase uintptr, stackLen uintptr, entry func(), priority int) (int, error) {
	if stackLen < MinStackBytes+GuardBytes {
		return 0, ErrStackTooSmall
	}
	if stackBase%8 != 0 {
		return 0, ErrBadAlignment
	}
	if priority < 0 {
		priority = 0
	}
	if priority >= PriorityLevels {
		priority = PriorityLevels - 1
	}

	t, err := reserveSlot()
	if err != nil {
		return 0, err
	}
	d := &sched.descs[t]

	stack := stackRegion{base: stackBase, len: stackLen}
	seedGuard(stack)

	d.priority = uint32(priority)
	d.stack = stack
	d.entry = entry
	d.joiner.Store(int32(noTid))
	d.watermark = stack.top()
	d.fpDirty.Store(true) // conservative default, see arch_amd64.go
	d.ctx = archInitFrame(stack)

	d.setState(stateReady)
	if err := sched.rq.enqueueReady(t, d); err != nil {
		// Roll back: the slot was never made visible to a joiner, so
		// this is safe to return to Empty directly.
		d.setState(stateEmpty)
		return 0, err
	}
	return int(t), nil
}

// reserveSlot claims a free descriptor via CAS Empty->Reserving.
func reserveSlot() (tid, error) {
	for i := 1; i < MaxThreads; i++ { // tid 0 is permanently the idle thread
		d := &sched.descs[i]
		if d.casState(stateEmpty, stateReserving) {
			return tid(i), nil
		}
	}
	return 0, ErrTooManyThreads
}

// YieldNow invokes the scheduler directly. Cooperative: never called
// from a signal/async context.
func YieldNow() {
	scheduleOnce()
}

// PreemptionCheckpoint is the only legal observation point for the
// preemption flag outside of a natural yield.
func PreemptionCheckpoint() {
	if sched.needsResched.Load() {
		scheduleOnce()
	}
}

// scheduleOnce picks the next runnable thread and switches into it,
// requeueing the outgoing thread first if it is still runnable.
func scheduleOnce() {
	sched.needsResched.Store(false)

	curTid, haveCur := CurrentTid()
	if haveCur && !checkGuard(sched.descs[curTid].stack) {
		// A corrupted stack is detected at a switch — the soonest a
		// thread's own overflow can be observed is the next time it
		// reaches the scheduler at all, whether or not another thread
		// ends up picked.
		halt("schedule", tid(curTid), "stack guard corrupted")
	}

	next, haveNext := pickNext(curTid, haveCur)

	if haveCur && haveNext && tid(curTid) == next {
		return
	}

	prev := &sched.descs[curTid]
	if prev.state() == stateRunning && tid(curTid) != idleTid {
		// Not exiting and not the idle thread: requeue Ready. Idle is
		// never placed on the run-queue — it is always available
		// through pickNext's fallback instead.
		prev.setState(stateReady)
		if err := sched.rq.enqueueReady(tid(curTid), prev); err != nil {
			// Queue-full cannot happen for a thread that was just
			// running (capacity == MaxThreads, one slot is always
			// free while this thread isn't itself queued), and this
			// thread cannot already be on-queue while it was Running.
			// If either somehow happened, the invariant "Ready => on
			// run-queue" would be broken: a fatal contract violation.
			halt("schedule", tid(curTid), "requeue failed: "+err.Error())
		}
	}

	nd := &sched.descs[next]
	if !checkGuard(nd.stack) {
		halt("schedule", next, "stack guard corrupted")
	}
	nd.setState(stateRunning)
	nd.onq.Store(false)
	sched.current.Store(int32(next))

	archSwitchTo(&prev.ctx, &nd.ctx)
}

// pickNext selects the next thread to run: the highest-priority
// run-queue entry if any exists, otherwise the currently-running
// thread if it is still runnable, otherwise the idle thread.
func pickNext(curTid int, haveCur bool) (tid, bool) {
	if t, ok := sched.rq.dequeueHighest(); ok {
		if sched.descs[t].state() != stateReady {
			halt("schedule", t, "dequeued tid is not Ready")
		}
		return t, true
	}
	if haveCur && sched.descs[curTid].state() == stateRunning {
		return tid(curTid), true
	}
	return idleTid, true
}

// ExitCurrent transitions the running thread to Exited, wakes a
// registered joiner if any, and schedules away. Never returns.
func ExitCurrent(status int32) {
	t, ok := CurrentTid()
	if !ok {
		halt("exit_current", 0, "no current thread")
	}
	d := &sched.descs[t]
	d.exitCode = status
	d.setState(stateExited)

	if j := tid(d.joiner.Load()); j != noTid {
		d.joiner.Store(int32(noTid))
		jd := &sched.descs[j]
		jd.setState(stateReady)
		if j != idleTid {
			// Idle is never placed on the run-queue; pickNext's
			// fallback finds it without one.
			if err := sched.rq.enqueueReady(j, jd); err != nil {
				halt("exit_current", j, "requeue of joiner failed: "+err.Error())
			}
		}
	}

	scheduleOnce()
	halt("exit_current", t, "schedule returned to an exited thread")
}

// Join waits for tid to exit and reclaims its slot, or returns
// immediately if it already has.
//
// There is only ever one thread actually executing on this logical
// CPU, so a waiting joiner parks by marking itself Blocked and calling
// the scheduler directly in a loop, rather than blocking a real OS
// thread/goroutine. A single joiner field per descriptor is enough
// since at most one thread may join a given target at a time
// (ErrAlreadyJoined rejects a second).
func Join(t int) (int32, error) {
	target := tid(t)
	if target < 0 || target >= MaxThreads {
		return 0, ErrInvalidTid
	}
	cur := mustCurrent()
	if tid(cur) == target {
		return 0, ErrDeadlockRefused
	}
	d := &sched.descs[target]

	if d.state() == stateExited {
		status := d.exitCode
		reclaim(d)
		return status, nil
	}

	if !d.joiner.CompareAndSwap(int32(noTid), int32(cur)) {
		return 0, ErrAlreadyJoined
	}

	self := &sched.descs[cur]
	for d.state() != stateExited {
		self.setState(stateBlocked)
		scheduleOnce()
	}

	status := d.exitCode
	reclaim(d)
	return status, nil
}

func reclaim(d *descriptor) {
	d.entry = nil
	d.setState(stateEmpty)
}

func mustCurrent() int {
	t, ok := CurrentTid()
	if !ok {
		halt("join", 0, "join called with no current thread")
	}
	return t
}

func idleLoop() {
	for {
		archIdleSpin()
		PreemptionCheckpoint()
	}
}

// idleStackMem backs the reserved idle thread's stack. Unlike user
// threads, whose stacks are always caller-provided, the idle thread is
// internal to the core and allocated once at package init; it is
// never spawned through Spawn and never reclaimed.
var idleStackMem = make([]byte, MinStackBytes+GuardBytes+64)

func idleStack() stackRegion {
	base := uintptr(unsafe.Pointer(&idleStackMem[0]))
	return stackRegion{base: base, len: uintptr(len(idleStackMem))}
}

// runCurrentEntry is called from threadEntryTrampoline (arch_amd64.s)
// the first time a spawned thread is switched into. It looks up the
// entry function through CurrentTid rather than receiving it as an
// argument, so the trampoline never has to marshal a Go func value
// across the architecture's raw calling convention.
func runCurrentEntry() {
	t, ok := CurrentTid()
	if !ok {
		halt("runCurrentEntry", 0, "trampoline entered with no current thread")
	}
	entry := sched.descs[t].entry
	if entry == nil {
		halt("runCurrentEntry", t, "nil entry function")
	}
	entry()
	ExitCurrent(0)
}
