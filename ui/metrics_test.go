package ui

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestLatencyTrackerPercentiles(t *testing.T) {
	tr := NewLatencyTracker()
	assert.Equal(t, LatencySnapshot{}, tr.Snapshot())

	for i := 1; i <= 100; i++ {
		tr.Observe(time.Duration(i) * time.Millisecond)
	}
	snap := tr.Snapshot()
	assert.Equal(t, 100, snap.N)
	assert.InDelta(t, float64(50*time.Millisecond), float64(snap.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(snap.P99), float64(time.Millisecond))
}

func TestLatencyTrackerClampsOutliers(t *testing.T) {
	tr := NewLatencyTracker()
	tr.Observe(time.Hour)
	tr.Observe(-time.Second)
	snap := tr.Snapshot()
	assert.Equal(t, 2, snap.N)
	assert.LessOrEqual(t, snap.P99, maxTrackedLatency+maxTrackedLatency/100)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRefresh(time.Second, nil)
	m.ObserveRender(time.Second)
	assert.Zero(t, m.RefreshSnapshot().N)
	assert.Zero(t, m.RefreshErrors())
}

func TestMetricsCountsRefreshErrors(t *testing.T) {
	m := NewMetrics()
	m.ObserveRefresh(time.Millisecond, nil)
	m.ObserveRefresh(time.Millisecond, errors.New("boom"))
	assert.Equal(t, 1, m.RefreshSnapshot().N)
	assert.Equal(t, uint64(1), m.RefreshErrors())
}
