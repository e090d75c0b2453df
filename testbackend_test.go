package threads

// goroutineBackend is a test-only archBackend that simulates the
// single-active-flow-of-control model over real goroutines and
// channels instead of raw register save/restore, so the scheduling
// policy (run-queue ordering, join/exit semantics, preemption
// bookkeeping) can be exercised deterministically without depending on
// the amd64 assembly actually executing correctly on the test machine.
//
// Each descriptor's context is a channel baton: switchTo always wakes
// the next context's channel, then blocks on the previous context's
// own channel, exactly mirroring what archSwitchAsm does at the
// register level — exactly one goroutine proceeds past any given
// switchTo call at a time.
type goroutineContext struct {
	resume  chan struct{}
	started bool
}

type goroutineBackend struct{}

func (goroutineBackend) fpStateSize() int { return 0 }

func (goroutineBackend) currentSP() uintptr { return 0 }

func (goroutineBackend) contextSP(ctx any) uintptr { return 0 }

// newContext boxes a context that is about to be saved into by a real
// switch-away from a live caller: it is already "started", so a later
// switch back into it must resume the blocked goroutine rather than
// spawn one.
func (goroutineBackend) newContext() any {
	return &goroutineContext{resume: make(chan struct{}), started: true}
}

// initFrame boxes a fresh context for a thread that has never run: the
// first switchTo that targets it spawns the goroutine that will run
// runCurrentEntry, mirroring threadEntryTrampoline's landing site.
func (goroutineBackend) initFrame(stack stackRegion) any {
	return &goroutineContext{resume: make(chan struct{}), started: false}
}

func (b goroutineBackend) switchTo(prev, next *any) {
	if *prev == nil {
		*prev = b.newContext()
	}
	pc := (*prev).(*goroutineContext)
	nc := (*next).(*goroutineContext)

	if !nc.started {
		nc.started = true
		go func() {
			<-nc.resume
			runCurrentEntry()
		}()
	}

	nc.resume <- struct{}{}
	<-pc.resume
}

// useGoroutineBackend points the package's backend at the simulated
// one and returns a restore func, so tests can run independently of
// GOARCH and of each other's leftover scheduler state.
func useGoroutineBackend() (restore func()) {
	prev := backend
	backend = goroutineBackend{}
	return func() { backend = prev }
}

// resetSchedulerForTest discards all scheduler state and reinitializes
// tid 0 against the calling goroutine. The package keeps its scheduler
// state in a single global, so tests cannot share process state; every
// test that spawns threads calls this first.
func resetSchedulerForTest() {
	sched = scheduler{}
	SchedulerInit()
}

