// Package sink writes rendered errtrail records to files and streams.
//
// A sink receives exactly one finished buffer per record: the record is
// rendered into a bounded buffer first and the sink never sees partial
// output.
package sink

import (
	"context"
	"io"
	"sync"
	"syscall"

	"codeberg.org/gruf/go-errors/v2"
	"codeberg.org/gruf/go-storage/disk"

	"github.com/olekukonko/errtrail"
)

// Sink accepts one rendered dump under a key.
type Sink interface {
	WriteBytes(ctx context.Context, key string, value []byte) (int, error)
}

// bufPool holds render buffers for Write.
var bufPool = sync.Pool{
	New: func() any {
		return new([errtrail.DumpMax]byte)
	},
}

// Write renders r and hands the result to s under key.
func Write(ctx context.Context, s Sink, key string, r *errtrail.Record) error {
	buf := bufPool.Get().(*[errtrail.DumpMax]byte)
	defer bufPool.Put(buf)

	n, err := errtrail.Render(r, buf[:])
	if err != nil {
		return errors.Wrapf(err, "error rendering record for %s", key)
	}

	if _, err := s.WriteBytes(ctx, key, buf[:n]); err != nil {
		return errors.Wrapf(err, "error writing record to %s", key)
	}

	return nil
}

// OpenDisk opens a directory of dump files. Each key is a file path
// relative to dir, written with truncation so a shorter dump fully
// replaces a longer one.
func OpenDisk(dir string) (*disk.DiskStorage, error) {
	cfg := disk.DefaultConfig()
	cfg.Create = disk.OpenArgs{
		Flags: syscall.O_CREAT | syscall.O_WRONLY | syscall.O_TRUNC,
		Perms: 0o644,
	}
	st, err := disk.Open(dir, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening dump directory %s", dir)
	}
	return st, nil
}

// Stream adapts an io.Writer to a Sink; keys are ignored.
type Stream struct {
	W  io.Writer
	mu sync.Mutex
}

// WriteBytes writes value to the underlying writer in a single call.
func (s *Stream) WriteBytes(_ context.Context, _ string, value []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.W.Write(value)
}
