package ui

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const maxTrackedLatency = time.Minute

// LatencyTracker records durations into an HDR histogram for percentile estimates.
type LatencyTracker struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{
		hist: hdrhistogram.New(1, maxTrackedLatency.Microseconds(), 3),
	}
}

func (t *LatencyTracker) Observe(d time.Duration) {
	if t == nil {
		return
	}
	us := min(max(d.Microseconds(), 1), maxTrackedLatency.Microseconds())
	t.mu.Lock()
	_ = t.hist.RecordValue(us)
	t.mu.Unlock()
}

type LatencySnapshot struct {
	P50 time.Duration
	P99 time.Duration
	N   int
}

func (t *LatencyTracker) Snapshot() LatencySnapshot {
	if t == nil {
		return LatencySnapshot{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.hist.TotalCount()
	if n == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		P50: time.Duration(t.hist.ValueAtQuantile(50)) * time.Microsecond,
		P99: time.Duration(t.hist.ValueAtQuantile(99)) * time.Microsecond,
		N:   int(n),
	}
}

// Metrics tracks how long sampling and drawing take.
type Metrics struct {
	refreshLatency *LatencyTracker
	renderLatency  *LatencyTracker
	refreshErrors  atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		refreshLatency: NewLatencyTracker(),
		renderLatency:  NewLatencyTracker(),
	}
}

func (m *Metrics) ObserveRefresh(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.refreshErrors.Add(1)
		return
	}
	m.refreshLatency.Observe(d)
}

func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.renderLatency.Observe(d)
}

func (m *Metrics) RefreshSnapshot() LatencySnapshot {
	if m == nil {
		return LatencySnapshot{}
	}
	return m.refreshLatency.Snapshot()
}

func (m *Metrics) RenderSnapshot() LatencySnapshot {
	if m == nil {
		return LatencySnapshot{}
	}
	return m.renderLatency.Snapshot()
}

func (m *Metrics) RefreshErrors() uint64 {
	if m == nil {
		return 0
	}
	return m.refreshErrors.Load()
}
