package errmgr

import (
	"strconv"
	"syscall"
)

// Common errno-compatible codes for records.
const (
	CodePermission   = int(syscall.EPERM)  // Operation not permitted
	CodeNotFound     = int(syscall.ENOENT) // No such file or directory
	CodeIO           = int(syscall.EIO)    // I/O error
	CodeNoMemory     = int(syscall.ENOMEM) // Out of memory
	CodeAccess       = int(syscall.EACCES) // Permission denied
	CodeBusy         = int(syscall.EBUSY)  // Device or resource busy
	CodeExists       = int(syscall.EEXIST) // File exists
	CodeInvalid      = int(syscall.EINVAL) // Invalid argument
	CodeNoSpace      = int(syscall.ENOSPC) // No space left on device
	CodeRange        = int(syscall.ERANGE) // Result out of range
	CodeNotSupported = int(syscall.ENOSYS) // Function not implemented
)

var names = map[int]string{
	CodePermission:   "EPERM",
	CodeNotFound:     "ENOENT",
	CodeIO:           "EIO",
	CodeNoMemory:     "ENOMEM",
	CodeAccess:       "EACCES",
	CodeBusy:         "EBUSY",
	CodeExists:       "EEXIST",
	CodeInvalid:      "EINVAL",
	CodeNoSpace:      "ENOSPC",
	CodeRange:        "ERANGE",
	CodeNotSupported: "ENOSYS",
}

// Name returns the symbolic name of a common code, or the
// code in decimal when it is not one of the codes above.
func Name(code int) string {
	if n, ok := names[code]; ok {
		return n
	}
	return strconv.Itoa(code)
}
