package errtrail

import (
	"io"
	"strconv"
	"sync"
)

// Dump layout. Frame lines follow the separator as index:function:file:line.
const (
	dumpHeader    = "====== ERROR DUMP ======\n"
	dumpCode      = "Error code: "
	dumpMessage   = "Error message: "
	dumpSeparator = "------------------------\n"
	dumpBacktrace = "Backtrace:\n"
	unknown       = "??"
)

// dumpPool holds DumpMax sized buffers for Dump.
var dumpPool = sync.Pool{
	New: func() interface{} {
		return new([DumpMax]byte)
	},
}

// Render writes r into dst in the dump format:
//
//	====== ERROR DUMP ======
//	Error code: 42
//	Error message: boom
//	------------------------
//	0:g:f.c:10
//
// It never writes past len(dst). If the dump does not fit it returns
// ErrTruncated, and the content of dst is then unspecified. Rendering
// frames added by NewAt and WrapAt does not allocate.
func Render(r *Record, dst []byte) (int, error) {
	if r == nil {
		return 0, ErrInvalid
	}
	// Capping capacity at len(dst) means any overflow
	// reallocates instead of writing past the caller's bound.
	out := appendRender(dst[:0:len(dst)], r)
	if len(out) > len(dst) {
		return 0, ErrTruncated
	}
	return len(out), nil
}

// AppendRender appends the dump of r to dst, growing it as needed.
func AppendRender(dst []byte, r *Record) []byte {
	if r == nil {
		return dst
	}
	return appendRender(dst, r)
}

// AppendBacktrace appends the dump of r followed by the raw program
// counters captured at creation, one [0x...] address per line.
func AppendBacktrace(dst []byte, r *Record) []byte {
	if r == nil {
		return dst
	}
	dst = appendRender(dst, r)
	if r.npcs == 0 {
		return dst
	}
	dst = append(dst, dumpSeparator...)
	dst = append(dst, dumpBacktrace...)
	for i := 0; i < r.npcs; i++ {
		dst = append(dst, "[0x"...)
		dst = strconv.AppendUint(dst, uint64(r.pcs[i]), 16)
		dst = append(dst, "]\n"...)
	}
	return dst
}

// Dump renders r into a DumpMax byte buffer and hands it to w in a single
// Write. Records whose dump exceeds DumpMax fail with ErrTruncated and
// nothing is written.
func Dump(w io.Writer, r *Record) error {
	buf := dumpPool.Get().(*[DumpMax]byte)
	defer dumpPool.Put(buf)
	n, err := Render(r, buf[:])
	if err != nil {
		return err
	}
	_, err = w.Write(buf[:n])
	return err
}

func appendRender(b []byte, r *Record) []byte {
	b = append(b, dumpHeader...)
	b = append(b, dumpCode...)
	b = strconv.AppendInt(b, int64(r.code), 10)
	b = append(b, '\n')
	b = append(b, dumpMessage...)
	b = r.appendMessage(b)
	b = append(b, '\n')
	b = append(b, dumpSeparator...)
	for i := 0; i < r.nframes; i++ {
		f := r.frames[i].Resolve()
		b = strconv.AppendUint(b, uint64(i), 10)
		b = append(b, ':')
		b = append(b, orUnknown(f.Function)...)
		b = append(b, ':')
		b = append(b, orUnknown(f.File)...)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(f.Line), 10)
		b = append(b, '\n')
	}
	return b
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
