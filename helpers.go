package errtrail

import (
	"errors"
	"syscall"
)

// From returns the first *Record in err's chain, or nil.
func From(err error) *Record {
	var r *Record
	if errors.As(err, &r) {
		return r
	}
	return nil
}

// Code returns the status code carried by err: the record's code,
// the value of a syscall.Errno, 0 for nil and -1 otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}
	if r := From(err); r != nil {
		return r.code
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return -1
}

// Is reports whether err carries the given code.
func Is(err error, code int) bool {
	return err != nil && Code(err) == code
}

// FramesOf returns the propagation chain of the first record in err's chain.
func FramesOf(err error) Frames {
	return From(err).Frames()
}

// Describe returns the system description of a code, as strerror would.
func Describe(code int) string {
	return syscall.Errno(code).Error()
}
