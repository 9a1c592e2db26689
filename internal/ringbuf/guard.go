package ringbuf

import (
	"runtime"
	"sync/atomic"
)

// guard serializes cursor and counter updates between producers. It stands in
// for the cross-core hardware spinlock of the source system, with the same
// two acquisition disciplines.
//
// The fast path is the interrupt-context analog: it spins without yielding,
// on the assumption that holders only ever perform a cursor update and a copy
// of at most a few bytes. The task path yields to the scheduler between
// attempts, mirroring the original order of excluding local preemption before
// taking the cross-core lock.
//
// The guard is never held across a storage operation.
type guard struct {
	flag atomic.Bool
}

func (g *guard) lockFast() {
	for !g.flag.CompareAndSwap(false, true) {
	}
}

func (g *guard) lock() {
	for !g.flag.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (g *guard) unlock() {
	g.flag.Store(false)
}
