//go:build amd64

package threads

import (
	"reflect"
	"unsafe"
)

// Context is the opaque register image sized and laid out by this
// backend. Field order and size must stay in sync with the numeric
// offsets arch_amd64.s uses directly.
type Context struct {
	rsp   uintptr // offset 0,  known to arch_amd64.s
	rbp   uintptr // offset 8,  known to arch_amd64.s
	rbx   uintptr // offset 16, known to arch_amd64.s
	r12   uintptr // offset 24, known to arch_amd64.s
	r13   uintptr // offset 32, known to arch_amd64.s
	r14   uintptr // offset 40, known to arch_amd64.s
	r15   uintptr // offset 48, known to arch_amd64.s
	flags uintptr // offset 56, known to arch_amd64.s
	rip   uintptr // offset 64, known to arch_amd64.s

	// fpstate is never allocated or read by this backend: archSwitchAsm
	// does not save or restore FPU/vector state, whatever the
	// descriptor's fpDirty bit says.
	fpstate *fpRegion
}

// fpRegion is a legacy FXSAVE/FXRSTOR area: 512 bytes, 16-byte aligned.
// XSAVE (AVX and beyond) is not implemented.
type fpRegion struct {
	_ [512]byte
}

type amd64Backend struct{}

func init() { backend = amd64Backend{} }

func (amd64Backend) fpStateSize() int { return int(unsafe.Sizeof(fpRegion{})) }

func (amd64Backend) currentSP() uintptr { return archCurrentSPAsm() }

func (amd64Backend) newContext() any { return &Context{} }

func (amd64Backend) contextSP(ctx any) uintptr { return ctx.(*Context).rsp }

// switchTo unboxes the two *Context pointers the any values hold and
// hands them to the raw asm switch. The any boxing costs one interface
// type assertion per switch; the Context memory itself is never copied,
// since what is boxed is always a pointer allocated once by newContext
// or initFrame.
func (amd64Backend) switchTo(prev, next *any) {
	if *prev == nil {
		*prev = amd64Backend{}.newContext()
	}
	p := (*prev).(*Context)
	n := (*next).(*Context)
	archSwitchAsm(p, n)
}

// initFrame builds a Context that "returns" into threadEntryTrampoline
// the first time it is switched into.
func (amd64Backend) initFrame(stack stackRegion) any {
	top := stack.top() &^ uintptr(stackAlignment-1)
	// Leave the synthetic return address just below the aligned top.
	sp := top - 8
	storeWordAt(sp, 0)

	c := &Context{rsp: sp, rip: trampolinePC}
	return c
}

// trampolinePC is the code address of threadEntryTrampoline, an
// asm-implemented, argument-less function. Context.rip is loaded with
// this value so that archSwitchAsm's JMP lands there directly.
var trampolinePC = funcPC(threadEntryTrampoline)

func funcPC(f func()) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// threadEntryTrampoline, archSwitchAsm, archCurrentSPAsm and
// archIdleSpin are implemented in arch_amd64.s.
func threadEntryTrampoline()
func archSwitchAsm(prev, next *Context)
func archCurrentSPAsm() uintptr

// archIdleSpin executes one low-power PAUSE. It backs the idle thread's
// entry loop.
func archIdleSpin()
