package errtrail

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want any
	}{
		{"default", DefaultConfig(), (*Ring)(nil)},
		{"empty strategy", Config{Capacity: 8}, (*Ring)(nil)},
		{"local", Config{Strategy: StrategyLocal}, (*Ring)(nil)},
		{"heap", Config{Strategy: StrategyHeap, MaxLive: 4}, (*Heap)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			require.NoError(t, err)
			defer s.Teardown()

			assert.IsType(t, tt.want, s.Storage())
			r := s.New(1, "opened")
			assert.False(t, r.Static())
		})
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(Config{Strategy: StrategyRing})
	assert.ErrorIs(t, err, ErrCapacity)

	_, err = Open(Config{Strategy: "tls", Capacity: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage strategy "tls"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, StrategyRing, cfg.Strategy)
	assert.Equal(t, 128, cfg.Capacity)

	s, err := Open(cfg)
	require.NoError(t, err)
	defer s.Teardown()
	assert.Equal(t, 128, s.Storage().(*Ring).Cap())
}

func TestOpenLocalIsSingleSlot(t *testing.T) {
	s, err := Open(Config{Strategy: StrategyLocal, Capacity: 64})
	require.NoError(t, err)
	defer s.Teardown()
	assert.Equal(t, 1, s.Storage().(*Ring).Cap())
}

func TestObserverEvents(t *testing.T) {
	obs := newCountingObserver()
	s := newTestStore(t, 4, WithObserver(obs))

	s.New(1, "a")
	s.Errno(1)
	s.Newf(2, "%s", strings.Repeat("x", 2*StrMax))
	s.NewfAt(2, "f.c", "g", 1, "short")

	assert.Equal(t, 2, obs.created[1])
	assert.Equal(t, 2, obs.created[2])
	assert.Equal(t, 1, obs.truncated[2])
	assert.Zero(t, obs.truncated[1])
	assert.Empty(t, obs.fallbacks)
}

func TestStoreLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := NewStore(NewRing(2), WithLogger(logger))
	s.New(1, "early")
	assert.Contains(t, buf.String(), "falling back to static record")
	assert.Contains(t, buf.String(), "storage not initialized")

	require.NoError(t, s.Init())
	assert.Contains(t, buf.String(), "storage ready")
	s.Teardown()
	assert.Contains(t, buf.String(), "storage torn down")

	buf.Reset()
	bad := NewStore(NewRing(0), WithLogger(logger))
	assert.ErrorIs(t, bad.Init(), ErrCapacity)
	assert.Contains(t, buf.String(), "storage init failed")
}

func TestWithLoggerNil(t *testing.T) {
	s := NewStore(NewRing(1), WithLogger(nil))
	require.NotPanics(t, func() {
		s.New(1, "no logger")
	})
}

func TestWithCapture(t *testing.T) {
	s := newTestStore(t, 2, WithCapture(4))

	r := s.New(3, "captured")
	pcs := r.PCs()
	require.NotEmpty(t, pcs)
	assert.LessOrEqual(t, len(pcs), 4)

	bt := r.Backtrace()
	require.NotEmpty(t, bt)
	assert.Equal(t, "github.com/olekukonko/errtrail.TestWithCapture", bt[0].Function)

	// Reusing the slot without capture clears the old counters.
	plain := newTestStore(t, 2)
	r = plain.New(3, "plain")
	assert.Nil(t, r.PCs())
	assert.Nil(t, r.Backtrace())
}

func TestWithCaptureClamped(t *testing.T) {
	var c config
	WithCapture(-3)(&c)
	assert.Zero(t, c.depth)
	WithCapture(CaptureMax * 4)(&c)
	assert.Equal(t, CaptureMax, c.depth)
}

func TestOpenCaptureDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CaptureDepth = 2
	s, err := Open(cfg)
	require.NoError(t, err)
	defer s.Teardown()

	r := s.New(1, "x")
	assert.NotEmpty(t, r.PCs())
	assert.LessOrEqual(t, len(r.PCs()), 2)
}
