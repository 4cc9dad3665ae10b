package errtrail

import (
	"log/slog"

	gerrors "codeberg.org/gruf/go-errors/v2"
)

// Strategy names a Storage implementation.
type Strategy string

// Available storage strategies.
const (
	StrategyRing  Strategy = "ring"  // shared ring of Capacity slots
	StrategyLocal Strategy = "local" // single slot owned by one goroutine
	StrategyHeap  Strategy = "heap"  // pooled allocation per record, MaxLive bounds live records
)

// Config describes a Store in a form that can be loaded from flags,
// environment or a config file.
type Config struct {
	Strategy     Strategy `mapstructure:"strategy"`
	Capacity     int      `mapstructure:"capacity"`
	MaxLive      int      `mapstructure:"max_live"`
	CaptureDepth int      `mapstructure:"capture_depth"`
}

// DefaultConfig returns a 128 slot shared ring without backtrace capture.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyRing,
		Capacity: 128,
	}
}

// Storage builds the storage described by c.
func (c Config) Storage() (Storage, error) {
	switch c.Strategy {
	case StrategyRing, "":
		if c.Capacity <= 0 {
			return nil, gerrors.Wrapf(ErrCapacity, "ring capacity %d", c.Capacity)
		}
		return NewRing(c.Capacity), nil
	case StrategyLocal:
		return NewLocal(), nil
	case StrategyHeap:
		return NewHeap(c.MaxLive), nil
	default:
		return nil, gerrors.Newf("errtrail: unknown storage strategy %q", c.Strategy)
	}
}

// config holds Store options.
type config struct {
	observer Observer
	logger   *slog.Logger
	depth    int
}

// Option configures a Store.
type Option func(*config)

// WithObserver reports record events to o.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// WithLogger sets the logger used for lifecycle and fallback events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCapture stores up to depth raw program counters with every new
// record, symbolized on demand by Record.Backtrace. Depth is capped at
// CaptureMax; zero disables capture.
func WithCapture(depth int) Option {
	return func(c *config) {
		c.depth = min(max(depth, 0), CaptureMax)
	}
}
