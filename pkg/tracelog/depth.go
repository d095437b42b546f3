package tracelog

import (
	"sync"

	"github.com/petermattis/goid"
)

// Depth is a per-goroutine nesting counter used to indent trace output.
// The zero value is ready to use. Every goroutine sees its own count, so
// concurrent traced call chains on different goroutines keep independent
// indentation.
//
// Instrumented code expects a counter named traceDepth in scope:
//
//	var traceDepth tracelog.Depth
//
// File-scope tracing injects this declaration automatically; narrower
// scopes require the surrounding code to declare it exactly once.
type Depth struct {
	counts sync.Map // goroutine id -> int
}

// Get returns the calling goroutine's current nesting depth.
func (d *Depth) Get() int {
	if v, ok := d.counts.Load(goid.Get()); ok {
		return v.(int)
	}
	return 0
}

// Inc increments the calling goroutine's depth.
func (d *Depth) Inc() {
	d.counts.Store(goid.Get(), d.Get()+1)
}

// Dec decrements the calling goroutine's depth, releasing the
// goroutine's slot when it returns to zero.
func (d *Depth) Dec() {
	id := goid.Get()
	if n := d.Get() - 1; n > 0 {
		d.counts.Store(id, n)
	} else {
		d.counts.Delete(id)
	}
}
