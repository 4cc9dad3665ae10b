package errmgr

// Alert is sent for every record created with Code once the
// number created has reached the threshold set with Watch.
type Alert struct {
	Code      int
	Count     uint64
	Threshold uint64
}

// Watch sets an alert threshold for code and returns the channel alerts are
// sent on. Sends never block; alerts are dropped while the channel is full.
// Watching an already watched code updates the threshold and returns the
// existing channel.
func (m *Monitor) Watch(code int, threshold uint64) <-chan Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds.Store(code, threshold)
	if ch, ok := m.alerts.Load(code); ok {
		return ch.(chan Alert)
	}
	ch := make(chan Alert, m.cfg.AlertBuffer)
	m.alerts.Store(code, ch)
	return ch
}

// Unwatch removes the threshold for code and closes its channel.
func (m *Monitor) Unwatch(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds.Delete(code)
	if ch, ok := m.alerts.LoadAndDelete(code); ok {
		close(ch.(chan Alert))
	}
}

// checkThreshold sends an alert whenever count is at or past the threshold for code.
func (m *Monitor) checkThreshold(code int, count uint64) {
	t, ok := m.thresholds.Load(code)
	if !ok || count < t.(uint64) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.alerts.Load(code)
	if !ok {
		return
	}
	select {
	case ch.(chan Alert) <- Alert{Code: code, Count: count, Threshold: t.(uint64)}:
	default:
	}
}
