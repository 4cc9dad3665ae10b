package errtrail

import (
	"sync/atomic"
)

// Storage hands out record slots.
//
// Init and Teardown bracket the life of the backing store. Init is
// idempotent and Teardown on an uninitialized storage is a no-op;
// re-initializing after a teardown allocates a fresh backing store.
type Storage interface {
	Init() error
	Teardown()

	// NextSlot returns a slot for a new record. The slot may hold stale
	// data from a previous record and must be fully overwritten.
	NextSlot() (*Record, error)

	// Release gives a record back once its owner is done with it.
	Release(r *Record)
}

// Ring is a fixed array of records reused round-robin. When the ring
// wraps the oldest record is silently overwritten, so at most Cap()
// records are alive at any time.
//
// Slot assignment is atomic and a Ring may be shared between goroutines;
// each record it hands out is then owned by the receiving goroutine until
// the ring comes back around to it.
type Ring struct {
	capacity int
	mask     uint64
	pow2     bool
	cursor   atomic.Uint64
	slots    atomic.Pointer[[]Record]
}

// compile-time guarantee that *Ring implements Storage
var _ Storage = (*Ring)(nil)

// NewRing returns an uninitialized ring of the given capacity. Power of two
// capacities index with a mask, other capacities with a modulo.
func NewRing(capacity int) *Ring {
	r := &Ring{capacity: capacity}
	if capacity > 0 && capacity&(capacity-1) == 0 {
		r.pow2 = true
		r.mask = uint64(capacity - 1)
	}
	return r
}

// NewLocal returns a single-slot ring: creating a record overwrites the
// previous one. It is meant to be owned by a single goroutine, the way
// errno is owned by a thread.
func NewLocal() *Ring {
	return NewRing(1)
}

// Init allocates the backing array.
func (r *Ring) Init() error {
	if r.capacity <= 0 {
		return ErrCapacity
	}
	if r.slots.Load() != nil {
		return nil
	}
	slots := make([]Record, r.capacity)
	for i := range slots {
		slots[i].origin = originRing
	}
	r.cursor.Store(0)
	r.slots.CompareAndSwap(nil, &slots)
	return nil
}

// Teardown drops the backing array and rewinds the cursor.
func (r *Ring) Teardown() {
	if r.slots.Swap(nil) != nil {
		r.cursor.Store(0)
	}
}

// Ready reports whether the ring has been initialized.
func (r *Ring) Ready() bool {
	return r.slots.Load() != nil
}

// Cap returns the number of slots.
func (r *Ring) Cap() int {
	return r.capacity
}

// NextSlot returns the slot under the cursor and advances it.
func (r *Ring) NextSlot() (*Record, error) {
	p := r.slots.Load()
	if p == nil {
		return nil, ErrNotInitialized
	}
	slots := *p
	i := r.cursor.Add(1) - 1
	if r.pow2 {
		return &slots[i&r.mask], nil
	}
	return &slots[i%uint64(len(slots))], nil
}

// Release clears a record handed out by this ring.
func (r *Ring) Release(rec *Record) {
	if rec == nil || rec.origin != originRing {
		return
	}
	rec.reset()
}

// Index returns the slot index of rec, or -1 if rec
// does not belong to the current backing array.
func (r *Ring) Index(rec *Record) int {
	p := r.slots.Load()
	if p == nil || rec == nil {
		return -1
	}
	slots := *p
	for i := range slots {
		if &slots[i] == rec {
			return i
		}
	}
	return -1
}
