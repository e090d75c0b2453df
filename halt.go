package threads

import "runtime"

// haltFunc is called on a detected fatal invariant violation: a canary
// mismatch at a switch, or a dequeued tid whose state is not Ready
// (which includes a state value outside the enumerated set). Descriptors
// that are not dequeued are not checked for an out-of-range state.
// These indicate memory
// corruption; per spec the core halts rather than continuing or
// unwinding through arbitrary caller stacks with a panic.
//
// Tests override haltFunc to observe a halt without actually spinning
// the process forever.
var haltFunc = defaultHalt

// HaltReason describes why the core halted.
type HaltReason struct {
	Op      string
	Tid     int
	Message string
}

func defaultHalt(reason HaltReason) {
	for {
		runtime.Gosched()
	}
}

func halt(op string, t tid, message string) {
	haltFunc(HaltReason{Op: op, Tid: int(t), Message: message})
}
