// Package errmgr counts errtrail record events per code, raises alerts when
// a code crosses a threshold and exports the counts to Prometheus.
package errmgr

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/olekukonko/errtrail"
)

// Config holds Monitor options.
type Config struct {
	DisableCounts  bool // Skip per-code counters, metrics only
	DisableMetrics bool // Skip Prometheus collectors, counters only
	AlertBuffer    int  // Buffer size of alert channels, defaults to 10
}

// Monitor implements errtrail.Observer.
type Monitor struct {
	cfg        Config
	created    shardedCounter
	dropped    shardedCounter
	truncated  shardedCounter
	fallbacks  atomic.Uint64
	thresholds sync.Map // map[int]uint64
	alerts     sync.Map // map[int]chan Alert
	mu         sync.Mutex
	metrics    *metrics
}

// compile-time guarantee that *Monitor implements errtrail.Observer
var _ errtrail.Observer = (*Monitor)(nil)

// New returns a Monitor.
func New(cfg Config) *Monitor {
	if cfg.AlertBuffer <= 0 {
		cfg.AlertBuffer = 10
	}
	m := &Monitor{cfg: cfg}
	if !cfg.DisableMetrics {
		m.metrics = newMetrics()
	}
	return m
}

// shardedCounter provides a low-contention counter per code.
type shardedCounter struct {
	counts sync.Map // map[int]*shards
}

const shardCount = 8

type shards [shardCount]struct {
	value uint64
	pad   [56]byte
}

// Inc increments the counter for code on a random shard
// and returns the new total.
func (c *shardedCounter) Inc(code int) uint64 {
	p, ok := c.counts.Load(code)
	if !ok {
		p, _ = c.counts.LoadOrStore(code, new(shards))
	}
	s := p.(*shards)
	atomic.AddUint64(&s[rand.IntN(shardCount)].value, 1)
	return c.sum(s)
}

// Value returns the total count for code across all shards.
func (c *shardedCounter) Value(code int) uint64 {
	if p, ok := c.counts.Load(code); ok {
		return c.sum(p.(*shards))
	}
	return 0
}

func (c *shardedCounter) sum(s *shards) uint64 {
	var total uint64
	for i := range s {
		total += atomic.LoadUint64(&s[i].value)
	}
	return total
}

// Reset zeroes the counter for code.
func (c *shardedCounter) Reset(code int) {
	if p, ok := c.counts.Load(code); ok {
		s := p.(*shards)
		for i := range s {
			atomic.StoreUint64(&s[i].value, 0)
		}
	}
}

// Snapshot returns all non-zero counts.
func (c *shardedCounter) Snapshot() map[int]uint64 {
	out := make(map[int]uint64)
	c.counts.Range(func(key, value any) bool {
		if n := c.sum(value.(*shards)); n > 0 {
			out[key.(int)] = n
		}
		return true
	})
	return out
}

// Created implements errtrail.Observer.
func (m *Monitor) Created(code int) {
	if m.metrics != nil {
		m.metrics.created.WithLabelValues(strconv.Itoa(code)).Inc()
	}
	if m.cfg.DisableCounts {
		return
	}
	n := m.created.Inc(code)
	m.checkThreshold(code, n)
}

// Dropped implements errtrail.Observer.
func (m *Monitor) Dropped(code int) {
	if m.metrics != nil {
		m.metrics.dropped.WithLabelValues(strconv.Itoa(code)).Inc()
	}
	if !m.cfg.DisableCounts {
		m.dropped.Inc(code)
	}
}

// Truncated implements errtrail.Observer.
func (m *Monitor) Truncated(code int) {
	if m.metrics != nil {
		m.metrics.truncated.WithLabelValues(strconv.Itoa(code)).Inc()
	}
	if !m.cfg.DisableCounts {
		m.truncated.Inc(code)
	}
}

// Fallback implements errtrail.Observer.
func (m *Monitor) Fallback(reason error) {
	if m.metrics != nil {
		m.metrics.fallbacks.WithLabelValues(fallbackReason(reason)).Inc()
	}
	m.fallbacks.Add(1)
}

// Count returns how many records with code were created.
func (m *Monitor) Count(code int) uint64 {
	return m.created.Value(code)
}

// DroppedCount returns how many frames were dropped from full records with code.
func (m *Monitor) DroppedCount(code int) uint64 {
	return m.dropped.Value(code)
}

// TruncatedCount returns how many messages of records with code were cut.
func (m *Monitor) TruncatedCount(code int) uint64 {
	return m.truncated.Value(code)
}

// Fallbacks returns how many times a static record was handed out.
func (m *Monitor) Fallbacks() uint64 {
	return m.fallbacks.Load()
}

// Counts returns a snapshot of created records per code.
func (m *Monitor) Counts() map[int]uint64 {
	if m.cfg.DisableCounts {
		return nil
	}
	return m.created.Snapshot()
}

// Codes returns the codes seen so far in ascending order.
func (m *Monitor) Codes() []int {
	counts := m.Counts()
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// ResetCounter zeroes all counters for code.
func (m *Monitor) ResetCounter(code int) {
	m.created.Reset(code)
	m.dropped.Reset(code)
	m.truncated.Reset(code)
}
