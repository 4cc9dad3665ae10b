package errtrail

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingObserver records observer events for assertions.
type countingObserver struct {
	created   map[int]int
	dropped   map[int]int
	truncated map[int]int
	fallbacks []error
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		created:   make(map[int]int),
		dropped:   make(map[int]int),
		truncated: make(map[int]int),
	}
}

func (o *countingObserver) Created(code int) { o.created[code]++ }
func (o *countingObserver) Dropped(code int) { o.dropped[code]++ }
func (o *countingObserver) Truncated(code int) { o.truncated[code]++ }
func (o *countingObserver) Fallback(reason error) { o.fallbacks = append(o.fallbacks, reason) }

func TestWrapAppendsFrames(t *testing.T) {
	s := newTestStore(t, 4)

	r := s.NewAt(1, "f0.c", "f0", 1, "x")
	for k := 1; k < 10; k++ {
		got := WrapAt(r, "f"+strconv.Itoa(k)+".c", "f"+strconv.Itoa(k), uint32(k+1))
		require.Same(t, r, got)
		require.Equal(t, k+1, r.Len())
	}
	for i := 0; i < r.Len(); i++ {
		f := r.Frame(i)
		assert.Equal(t, "f"+strconv.Itoa(i), f.Function)
		assert.Equal(t, uint32(i+1), f.Line)
	}
}

func TestWrapCapsAtFrameMax(t *testing.T) {
	obs := newCountingObserver()
	s := newTestStore(t, 4, WithObserver(obs))

	r := s.NewAt(9, "f.c", "origin", 1, "deep")
	for k := 1; k < FrameMax; k++ {
		WrapAt(r, "f.c", "level"+strconv.Itoa(k), uint32(k))
	}
	require.Equal(t, FrameMax, r.Len())
	before := r.Frames()

	for i := 0; i < 5; i++ {
		WrapAt(r, "late.c", "late", 99)
		Wrap(r)
	}
	assert.Equal(t, FrameMax, r.Len())
	assert.Equal(t, before, r.Frames())
	assert.Equal(t, 10, obs.dropped[9])
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil))
	assert.Nil(t, WrapAt(nil, "f.c", "g", 1))

	n, r := Return(7, nil)
	assert.Equal(t, 7, n)
	assert.Nil(t, r)
}

//go:noinline
func failLeaf(s *Store) *Record {
	return s.New(42, "boom")
}

//go:noinline
func failMiddle(s *Store) *Record {
	if r := failLeaf(s); r != nil {
		return Wrap(r)
	}
	return nil
}

//go:noinline
func failTop(s *Store) (int, *Record) {
	if r := failMiddle(s); r != nil {
		return Return(-1, r)
	}
	return 0, nil
}

func TestWrapPropagation(t *testing.T) {
	s := newTestStore(t, 4)

	n, r := failTop(s)
	require.NotNil(t, r)
	assert.Equal(t, -1, n)
	assert.Equal(t, 42, r.Code())
	assert.Equal(t, "boom", r.Message())

	frames := r.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, "errtrail.failLeaf", frames[0].Function)
	assert.Equal(t, "errtrail.failMiddle", frames[1].Function)
	assert.Equal(t, "errtrail.failTop", frames[2].Function)
	for _, f := range frames {
		assert.Equal(t, "wrap_test.go", f.File)
		assert.NotZero(t, f.Line)
	}
}

func TestWrapOneRecordPerFailure(t *testing.T) {
	s := newTestStore(t, 8)
	ring := s.Storage().(*Ring)

	_, r := failTop(s)
	assert.Equal(t, 0, ring.Index(r))

	// Propagation never takes a slot, so the next failure gets the next one.
	_, r = failTop(s)
	assert.Equal(t, 1, ring.Index(r))
}

func TestHere(t *testing.T) {
	f := Here()
	assert.Equal(t, "wrap_test.go", f.File)
	assert.Equal(t, "errtrail.TestHere", f.Function)
	assert.NotZero(t, f.Line)

	s := newTestStore(t, 1)
	r := s.NewAt(1, f.File, f.Function, f.Line, "manual")
	assert.Equal(t, Frame{File: f.File, Function: f.Function, Line: f.Line}, r.Frame(0))
}
