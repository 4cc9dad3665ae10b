//go:build !race

package errtrail

import (
	"codeberg.org/gruf/go-mempool"
)

// recordPool recycles heap records through go-mempool's per-P ring.
type recordPool struct {
	p mempool.Pool[Record]
}

func newRecordPool() *recordPool {
	return &recordPool{p: mempool.NewPool(
		func() *Record { return new(Record) },
		func(r *Record) bool {
			r.reset()
			return true
		},
		nil,
	)}
}

func (rp *recordPool) Get() *Record { return rp.p.Get() }
func (rp *recordPool) Put(r *Record) { rp.p.Put(r) }
func (rp *recordPool) GC() { rp.p.GC() }
