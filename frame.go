package errtrail

import (
	"log/slog"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Frame is one location in a record's propagation chain.
//
// Frames added by NewAt and WrapAt carry File, Function and Line as given.
// Frames added by New and Wrap carry only the caller's program counter and
// are symbolized when read, which keeps the propagation path free of
// symbol lookups.
type Frame struct {
	PC       uintptr // Return address of the call site, zero for manual frames
	File     string  // Base name of the source file
	Function string  // Package-qualified function name
	Line     uint32
}

// Resolve returns f with File, Function and Line filled in from PC.
// Frames that already carry a location are returned unchanged.
func (f Frame) Resolve() Frame {
	if f.PC == 0 || f.File != "" || f.Function != "" {
		return f
	}
	rf, _ := runtime.CallersFrames([]uintptr{f.PC}).Next()
	f.File = baseName(rf.File)
	f.Function = funcName(rf.Function)
	f.Line = uint32(rf.Line)
	return f
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (f Frame) MarshalZerologObject(e *zerolog.Event) {
	f = f.Resolve()
	e.Str("function", f.Function).Str("file", f.File).Uint32("line", f.Line)
}

// LogValue implements slog.LogValuer.
func (f Frame) LogValue() slog.Value {
	f = f.Resolve()
	return slog.GroupValue(
		slog.String("function", f.Function),
		slog.String("file", f.File),
		slog.Int("line", int(f.Line)),
	)
}

// Frames is an ordered propagation chain, origin first.
type Frames []Frame

// MarshalZerologArray implements zerolog.LogArrayMarshaler.
func (s Frames) MarshalZerologArray(a *zerolog.Array) {
	for _, f := range s {
		a.Object(f)
	}
}

// baseName trims the directory part of a runtime file path.
// Runtime paths always use forward slashes.
func baseName(file string) string {
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		return file[i+1:]
	}
	return file
}

// funcName drops the module path and any generic
// type parameter markers from a runtime function name.
func funcName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	const params = "[...]"
	if i := strings.Index(name, params); i >= 0 {
		name = name[:i] + name[i+len(params):]
	}
	return name
}
