package errtrail

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
)

// Observer receives record events. Methods are called synchronously on
// the creating or wrapping goroutine and must be safe for concurrent use.
type Observer interface {
	Created(code int)
	Dropped(code int)   // a frame was dropped because the record was full
	Truncated(code int) // a formatted message was cut to fit
	Fallback(reason error)
}

// Store creates records from a Storage. It is the context object passed
// to failure sites; independent stores do not share any state.
type Store struct {
	storage Storage
	cfg     config
}

// NewStore returns a Store over storage. The storage still
// needs Init before records can be created from it.
func NewStore(storage Storage, opts ...Option) *Store {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{storage: storage, cfg: cfg}
}

// Open builds the storage described by cfg and initializes it.
func Open(cfg Config, opts ...Option) (*Store, error) {
	st, err := cfg.Storage()
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithCapture(cfg.CaptureDepth)}, opts...)
	s := NewStore(st, opts...)
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Storage returns the underlying storage.
func (s *Store) Storage() Storage {
	return s.storage
}

// Init initializes the underlying storage.
func (s *Store) Init() error {
	if err := s.storage.Init(); err != nil {
		s.cfg.logger.LogAttrs(context.Background(), slog.LevelError, "storage init failed",
			slog.Any("error", err))
		return err
	}
	s.cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "storage ready")
	return nil
}

// Teardown releases the underlying storage. Records handed out by a
// ring must not be used afterwards.
func (s *Store) Teardown() {
	s.storage.Teardown()
	s.cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "storage torn down")
}

// Errno creates a record holding only a code, located at the caller.
//
//go:noinline
func (s *Store) Errno(code int) *Record {
	return s.create(code, Frame{PC: callerPC(1)}, "")
}

// New creates a record with a literal message, located at the caller.
// An empty message is reported as NoMessage.
//
//go:noinline
func (s *Store) New(code int, msg string) *Record {
	return s.create(code, Frame{PC: callerPC(1)}, msg)
}

// Newf creates a record with a message formatted into the record's own
// buffer, located at the caller. Output longer than StrMax-1 bytes is
// silently cut at a rune boundary.
//
//go:noinline
func (s *Store) Newf(code int, format string, args ...any) *Record {
	return s.createf(code, Frame{PC: callerPC(1)}, format, args)
}

// NewAt creates a record with a literal message at an explicit location.
func (s *Store) NewAt(code int, file, function string, line uint32, msg string) *Record {
	return s.create(code, Frame{File: file, Function: function, Line: line}, msg)
}

// NewfAt is Newf at an explicit location.
func (s *Store) NewfAt(code int, file, function string, line uint32, format string, args ...any) *Record {
	return s.createf(code, Frame{File: file, Function: function, Line: line}, format, args)
}

// Destroy gives r back to the storage. Static records are left alone.
func (s *Store) Destroy(r *Record) {
	if r == nil || r.origin == originStatic {
		return
	}
	s.storage.Release(r)
}

// captureSkip is the number of frames between create /
// createf and the user's call site, see captureInto.
const captureSkip = 2

func (s *Store) create(code int, f Frame, msg string) *Record {
	r := s.slot()
	if r.origin == originStatic {
		return r
	}
	r.fill(code, f, s.cfg.observer)
	if msg != "" {
		r.msg = msg
	}
	s.captureInto(r, captureSkip)
	if s.cfg.observer != nil {
		s.cfg.observer.Created(code)
	}
	return r
}

func (s *Store) createf(code int, f Frame, format string, args []any) *Record {
	r := s.slot()
	if r.origin == originStatic {
		return r
	}
	r.fill(code, f, s.cfg.observer)
	truncated := r.setf(format, args)
	s.captureInto(r, captureSkip)
	if s.cfg.observer != nil {
		s.cfg.observer.Created(code)
		if truncated {
			s.cfg.observer.Truncated(code)
		}
	}
	return r
}

// slot never returns nil: storage failures fall back to a static record.
func (s *Store) slot() *Record {
	r, err := s.storage.NextSlot()
	if err == nil {
		return r
	}
	if s.cfg.observer != nil {
		s.cfg.observer.Fallback(err)
	}
	s.cfg.logger.LogAttrs(context.Background(), slog.LevelWarn, "falling back to static record",
		slog.Any("error", err))
	if r != nil && r.origin == originStatic {
		return r
	}
	if errors.Is(err, ErrNotInitialized) {
		return NotInitialized
	}
	return Generic
}

// captureInto stores the raw call stack starting skip frames above
// the function calling captureInto.
func (s *Store) captureInto(r *Record, skip int) {
	if s.cfg.depth == 0 {
		return
	}
	// 0 is runtime.Callers, 1 captureInto, 2 its caller.
	r.npcs = runtime.Callers(skip+2, r.pcs[:s.cfg.depth])
}
