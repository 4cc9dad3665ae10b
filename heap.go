package errtrail

import (
	"sync/atomic"
)

// Heap hands out a separately allocated record per call. Records live until
// they are released, so they may outlive the producing call stack and be
// handed to another goroutine. Released records are recycled through a pool.
//
// With a positive limit, at most that many records may be alive at once;
// past it NextSlot fails the way an allocation would and returns Generic.
type Heap struct {
	limit int64
	live  atomic.Int64
	pool  *recordPool
}

// compile-time guarantee that *Heap implements Storage
var _ Storage = (*Heap)(nil)

// NewHeap returns a heap storage allowing at most limit live
// records. A limit of zero or less means no limit.
func NewHeap(limit int) *Heap {
	return &Heap{limit: int64(limit), pool: newRecordPool()}
}

// Init is a no-op, records are allocated per call.
func (h *Heap) Init() error { return nil }

// Teardown drops pooled records. Live records stay valid.
func (h *Heap) Teardown() { h.pool.GC() }

// Live returns the number of records handed out and not yet released.
func (h *Heap) Live() int {
	return int(h.live.Load())
}

// NextSlot allocates a record. When the limit is reached it returns the
// shared Generic record along with ErrOutOfMemory, never nil.
func (h *Heap) NextSlot() (*Record, error) {
	n := h.live.Add(1)
	if h.limit > 0 && n > h.limit {
		h.live.Add(-1)
		return Generic, ErrOutOfMemory
	}
	r := h.pool.Get()
	if r == nil {
		h.live.Add(-1)
		return Generic, ErrOutOfMemory
	}
	r.origin = originHeap
	return r, nil
}

// Release recycles a record allocated by a Heap. Releasing a static
// record, a ring record or an already released record does nothing.
func (h *Heap) Release(r *Record) {
	if r == nil || r.origin != originHeap {
		return
	}
	r.origin = originFree
	h.live.Add(-1)
	h.pool.Put(r)
}
