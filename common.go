package errtrail

import (
	"errors"
	"syscall"
)

// Record limits. A record never grows past these.
const (
	FrameMax   = 16  // Frames kept per record; extra Wrap calls are dropped
	StrMax     = 255 // Size of the embedded message buffer, message holds at most StrMax-1 bytes
	CaptureMax = 32  // Raw program counters kept when backtrace capture is enabled
	DumpMax    = 4096
)

// NoMessage is reported for records created without a message.
const NoMessage = "No message"

// Errors returned by storage and rendering operations.
var (
	ErrNotInitialized = errors.New("errtrail: storage not initialized")
	ErrOutOfMemory    = errors.New("errtrail: record allocation failed")
	ErrTruncated      = errors.New("errtrail: insufficient buffer")
	ErrInvalid        = errors.New("errtrail: invalid record")
	ErrCapacity       = errors.New("errtrail: capacity must be positive")
)

// Static records handed out when a record cannot be produced. They are
// shared by every caller and are never mutated: Wrap and Destroy leave
// them untouched.
var (
	// Generic replaces a record whose allocation failed.
	Generic = newStatic(int(syscall.ENOMEM), "Out of memory")

	// NotInitialized is returned by Store constructors used before Init
	// or after Teardown. errors.Is(r, ErrNotInitialized) reports true.
	NotInitialized = newStatic(int(syscall.EINVAL), "Error storage not initialized")
)

func newStatic(code int, msg string) *Record {
	r := &Record{origin: originStatic}
	r.fill(code, Frame{File: "errtrail", Function: "static"}, nil)
	r.msg = msg
	return r
}
