package threads

// archBackend is the capability contract an architecture port must
// satisfy. The scheduler never names a register or an architecture
// directly; it only calls through this contract, and the register
// image it hands around is an opaque `any` whose concrete type and
// size is entirely the backend's business. Only the amd64 port
// (arch_amd64.go, arch_amd64.s) ships in this module; a test-only
// backend (testbackend_test.go) implements the same contract over real
// goroutines so the scheduling policy can be exercised deterministically
// without depending on the assembly actually running correctly on the
// test machine. ARM64 or RISC-V would satisfy the same operations with
// a different register set.
type archBackend interface {
	// newContext allocates a zero register image of this backend's
	// concrete type, to be filled in by a later switchTo save.
	newContext() any

	// initFrame builds a Context that, once loaded by switchTo, begins
	// execution at the internal entry trampoline with stack.top()
	// (minus alignment padding) as the stack pointer and all
	// callee-saved registers zeroed.
	initFrame(stack stackRegion) any

	// switchTo atomically, from the caller's viewpoint, saves the live
	// callee-saved register set plus flags and instruction pointer into
	// *prev and loads the same set from *next, resuming at next's saved
	// instruction pointer.
	switchTo(prev, next *any)

	// currentSP reads the live stack pointer, used only for watermark
	// diagnostics.
	currentSP() uintptr

	// contextSP reads the saved stack pointer out of a non-running
	// context, for stack_status diagnostics on a thread that is not
	// currently executing.
	contextSP(ctx any) uintptr

	// fpStateSize reports the size in bytes of the port's FPU/vector
	// save-area type, or 0 if the port defines none. A nonzero size does
	// not mean switchTo saves that state: the amd64 port defines a
	// 512-byte area but its switch does not fill it.
	fpStateSize() int
}

// backend is the process-wide architecture port. Set once, at package
// init, by the build-tagged arch_<GOARCH>.go file; tests may swap it
// before calling SchedulerInit.
var backend archBackend

func archInitFrame(stack stackRegion) any { return backend.initFrame(stack) }

func archSwitchTo(prev, next *any) { backend.switchTo(prev, next) }

func archCurrentSP() uintptr { return backend.currentSP() }

func archContextSP(ctx any) uintptr { return backend.contextSP(ctx) }
