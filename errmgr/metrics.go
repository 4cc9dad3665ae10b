package errmgr

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/olekukonko/errtrail"
)

// metrics holds the Prometheus collectors of a Monitor.
type metrics struct {
	// created counts records created, labeled by code.
	created *prometheus.CounterVec

	// dropped counts frames dropped from full records, labeled by code.
	dropped *prometheus.CounterVec

	// truncated counts formatted messages cut to fit, labeled by code.
	truncated *prometheus.CounterVec

	// fallbacks counts static records handed out, labeled by reason.
	fallbacks *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "errtrail",
				Subsystem: "records",
				Name:      "created_total",
				Help:      "Number of error records created by code",
			},
			[]string{"code"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "errtrail",
				Subsystem: "frames",
				Name:      "dropped_total",
				Help:      "Number of frames dropped from full records by code",
			},
			[]string{"code"},
		),
		truncated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "errtrail",
				Subsystem: "messages",
				Name:      "truncated_total",
				Help:      "Number of formatted messages truncated by code",
			},
			[]string{"code"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "errtrail",
				Subsystem: "records",
				Name:      "fallbacks_total",
				Help:      "Number of static records handed out by reason",
			},
			[]string{"reason"},
		),
	}
}

// RegisterMetrics registers the Monitor's collectors with reg.
// It is a no-op for a Monitor created with DisableMetrics.
//
// Example:
//
//	mon := errmgr.New(errmgr.Config{})
//	if err := mon.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
//		return err
//	}
func (m *Monitor) RegisterMetrics(reg prometheus.Registerer) error {
	if m.metrics == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{
		m.metrics.created,
		m.metrics.dropped,
		m.metrics.truncated,
		m.metrics.fallbacks,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Fallback reasons used as metric labels.
const (
	ReasonNotInitialized = "not_initialized"
	ReasonOutOfMemory    = "out_of_memory"
	ReasonOther          = "other"
)

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errtrail.ErrNotInitialized):
		return ReasonNotInitialized
	case errors.Is(err, errtrail.ErrOutOfMemory):
		return ReasonOutOfMemory
	default:
		return ReasonOther
	}
}
