//go:build race

package errtrail

import (
	"sync"
)

// recordPool recycles heap records through a sync.Pool. The race detector
// cannot see the ordering go-mempool's per-P slots provide, so race builds
// use a pool it understands.
type recordPool struct {
	p sync.Pool
}

func newRecordPool() *recordPool {
	return &recordPool{p: sync.Pool{
		New: func() any { return new(Record) },
	}}
}

func (rp *recordPool) Get() *Record { return rp.p.Get().(*Record) }

func (rp *recordPool) Put(r *Record) {
	r.reset()
	rp.p.Put(r)
}

// GC is a no-op, sync.Pool is drained by the runtime.
func (rp *recordPool) GC() {}
