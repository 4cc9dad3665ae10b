// Package errtrail provides fixed-size error records that carry a status code,
// an optional message and a call chain accumulated by hand at each propagation
// boundary. Records come from a Storage (a ring of reusable slots, a single
// per-goroutine slot, or pooled heap allocations) so creating and propagating
// an error does not allocate on the hot path.
package errtrail

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"syscall"
	"unicode/utf8"

	gerrors "codeberg.org/gruf/go-errors/v2"
	"github.com/rs/zerolog"
)

// origin records which storage produced a record.
type origin uint8

const (
	originNone origin = iota
	originRing
	originHeap
	originFree // heap record already released to the pool
	originStatic
)

// Record is an error value made of a code, a message and the frames it
// picked up while propagating. A *Record is only valid until its storage
// slot is reused; ring slots are reused once the ring wraps around.
//
// A record must only be touched by one goroutine at a time.
type Record struct {
	code      int
	msg       string // literal message, unused when formatted is set
	formatted bool
	msgLen    int
	buf       [StrMax]byte

	frames  [FrameMax]Frame
	nframes int

	pcs  [CaptureMax]uintptr
	npcs int

	obs    Observer
	origin origin
}

// fill overwrites every observable field. Slots coming back from
// a ring are not zeroed so nothing here may rely on zero values.
func (r *Record) fill(code int, f Frame, obs Observer) {
	r.code = code
	r.msg = NoMessage
	r.formatted = false
	r.msgLen = 0
	r.frames[0] = f
	r.nframes = 1
	r.npcs = 0
	r.obs = obs
}

// reset clears the record entirely, keeping its origin.
func (r *Record) reset() {
	o := r.origin
	*r = Record{origin: o}
}

// setf formats into the embedded buffer, reporting whether the
// output had to be cut to fit.
func (r *Record) setf(format string, args []any) (truncated bool) {
	// Appendf writes in place when the output fits the buffer.
	out := fmt.Appendf(r.buf[:0], format, args...)
	n := len(out)
	if n > StrMax-1 {
		n = copy(r.buf[:StrMax-1], out)
		n = runeBoundary(r.buf[:n])
		truncated = true
	}
	r.msgLen = n
	r.formatted = true
	return truncated
}

// runeBoundary returns the length of b without
// a trailing partially encoded rune.
func runeBoundary(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return i
			}
			break
		}
	}
	return len(b)
}

// appendMessage appends the message without allocating.
func (r *Record) appendMessage(b []byte) []byte {
	if r.formatted {
		return append(b, r.buf[:r.msgLen]...)
	}
	return append(b, r.msg...)
}

// Code returns the record's status code.
func (r *Record) Code() int {
	if r == nil {
		return 0
	}
	return r.code
}

// Errno returns the code as a syscall.Errno.
func (r *Record) Errno() syscall.Errno {
	return syscall.Errno(r.Code())
}

// Message returns a copy of the message.
func (r *Record) Message() string {
	if r == nil {
		return ""
	}
	if r.formatted {
		return string(r.buf[:r.msgLen])
	}
	return r.msg
}

// Len returns the number of frames, between 1 and FrameMax.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return r.nframes
}

// Frame returns the i'th frame, symbolized. A nil record or an
// index outside [0, Len()) yields the zero Frame.
func (r *Record) Frame(i int) Frame {
	if r == nil || i < 0 || i >= r.nframes {
		return Frame{}
	}
	return r.frames[i].Resolve()
}

// Frames returns a symbolized copy of the propagation chain, origin first.
func (r *Record) Frames() Frames {
	if r == nil {
		return nil
	}
	out := make(Frames, r.nframes)
	for i := range out {
		out[i] = r.frames[i].Resolve()
	}
	return out
}

// PCs returns the raw program counters captured at creation,
// nil unless the store was configured WithCapture.
func (r *Record) PCs() []uintptr {
	if r == nil || r.npcs == 0 {
		return nil
	}
	pcs := make([]uintptr, r.npcs)
	copy(pcs, r.pcs[:r.npcs])
	return pcs
}

// Backtrace symbolizes the program counters captured at creation.
func (r *Record) Backtrace() gerrors.Callers {
	pcs := r.PCs()
	if len(pcs) == 0 {
		return nil
	}
	iter := runtime.CallersFrames(pcs)
	callers := make(gerrors.Callers, 0, len(pcs))
	for {
		f, more := iter.Next()
		callers = append(callers, f)
		if !more {
			break
		}
	}
	return callers
}

// Static reports whether r is one of the shared fallback records.
func (r *Record) Static() bool {
	return r != nil && r.origin == originStatic
}

// Err returns r as an error, or an untyped nil for a nil record.
func (r *Record) Err() error {
	if r == nil {
		return nil
	}
	return r
}

// Error implements the error interface.
func (r *Record) Error() string {
	if r == nil {
		return "<nil>"
	}
	return r.Message() + " (code " + strconv.Itoa(r.code) + ")"
}

// Is matches syscall.Errno targets and other records by code.
func (r *Record) Is(target error) bool {
	if r == nil {
		return target == nil
	}
	switch t := target.(type) {
	case syscall.Errno:
		return int(t) == r.code
	case *Record:
		return t != nil && t.code == r.code
	}
	if target == ErrNotInitialized {
		return r == NotInitialized
	}
	if target == ErrOutOfMemory {
		return r == Generic
	}
	return false
}

// String renders the record in the dump format.
func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	return string(AppendRender(nil, r))
}

// LogValue implements slog.LogValuer.
func (r *Record) LogValue() slog.Value {
	if r == nil {
		return slog.Value{}
	}
	frames := make([]string, r.nframes)
	for i := range frames {
		f := r.frames[i].Resolve()
		frames[i] = f.Function + " " + f.File + ":" + strconv.FormatUint(uint64(f.Line), 10)
	}
	return slog.GroupValue(
		slog.Int("code", r.code),
		slog.String("message", r.Message()),
		slog.Any("frames", frames),
	)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *Record) MarshalZerologObject(e *zerolog.Event) {
	if r == nil {
		return
	}
	e.Int("code", r.code).
		Str("message", r.Message()).
		Array("frames", Frames(r.frames[:r.nframes]))
}
