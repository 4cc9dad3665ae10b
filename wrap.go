package errtrail

// Wrap appends the caller's location to r and returns r, so it can sit
// directly in a return statement:
//
//	if rec := open(path); rec != nil {
//		return errtrail.Wrap(rec)
//	}
//
// A nil record is passed through untouched. Once a record holds FrameMax
// frames further calls are dropped without error.
//
//go:noinline
func Wrap(r *Record) *Record {
	if r == nil {
		return nil
	}
	if !r.accepts() {
		return r
	}
	r.frames[r.nframes] = Frame{PC: callerPC(1)}
	r.nframes++
	return r
}

// WrapAt is Wrap with an explicit location.
func WrapAt(r *Record, file, function string, line uint32) *Record {
	if r == nil {
		return nil
	}
	if !r.accepts() {
		return r
	}
	r.frames[r.nframes] = Frame{File: file, Function: function, Line: line}
	r.nframes++
	return r
}

// Return wraps r at the caller and passes v through alongside it, for
// functions returning a value with the record:
//
//	n, rec := parse(b)
//	if rec != nil {
//		return errtrail.Return(-1, rec)
//	}
//
//go:noinline
func Return[T any](v T, r *Record) (T, *Record) {
	if r == nil || !r.accepts() {
		return v, r
	}
	r.frames[r.nframes] = Frame{PC: callerPC(1)}
	r.nframes++
	return v, r
}

// accepts reports whether another frame can be appended,
// notifying the observer when a full record drops one.
func (r *Record) accepts() bool {
	if r.origin == originStatic {
		return false
	}
	if r.nframes >= FrameMax {
		if r.obs != nil {
			r.obs.Dropped(r.code)
		}
		return false
	}
	return true
}
