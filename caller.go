package errtrail

import (
	"runtime"
)

// callerPC returns the return address skip frames above its caller:
// skip 0 is the function calling callerPC, 1 is that function's caller.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// Here returns the location of its caller, for use with NewAt and WrapAt
// where a Frame must be built up front.
//
//go:noinline
func Here() Frame {
	return Frame{PC: callerPC(1)}.Resolve()
}
