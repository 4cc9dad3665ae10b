package errmgr

import (
	"testing"

	"github.com/olekukonko/errtrail"
)

// BenchmarkCreated measures counting a record with metrics enabled.
func BenchmarkCreated(b *testing.B) {
	mon := New(Config{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mon.Created(CodeIO)
	}
}

// BenchmarkCreatedNoMetrics measures counting a record without Prometheus.
func BenchmarkCreatedNoMetrics(b *testing.B) {
	mon := New(Config{DisableMetrics: true})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mon.Created(CodeIO)
	}
}

// BenchmarkCreatedParallel measures sharded counter contention.
func BenchmarkCreatedParallel(b *testing.B) {
	mon := New(Config{DisableMetrics: true})
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mon.Created(CodeIO)
		}
	})
}

// BenchmarkObservedStore measures record creation with a Monitor attached.
func BenchmarkObservedStore(b *testing.B) {
	mon := New(Config{DisableMetrics: true})
	s := errtrail.NewStore(errtrail.NewRing(128), errtrail.WithObserver(mon))
	if err := s.Init(); err != nil {
		b.Fatal(err)
	}
	defer s.Teardown()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		errtrail.Wrap(s.New(CodeIO, "observed"))
	}
}
