package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyMonitor_RecordAndSnapshot(t *testing.T) {
	monitor := NewLatencyMonitor()

	monitor.Record("analysis", 10*time.Millisecond)
	monitor.Record("analysis", 30*time.Millisecond)
	monitor.Record("synthesis", 5*time.Millisecond)

	snapshot := monitor.Snapshot()
	require.Contains(t, snapshot, "analysis")
	require.Contains(t, snapshot, "synthesis")

	analysis := snapshot["analysis"]
	assert.Equal(t, 2, analysis.Count)
	assert.InDelta(t, 20.0, analysis.AvgMS, 0.001)
	assert.InDelta(t, 30.0, analysis.MaxMS, 0.001)
}

func TestLatencyMonitor_EmptySnapshot(t *testing.T) {
	monitor := NewLatencyMonitor()

	assert.Empty(t, monitor.Snapshot())
}

func TestLatencyMonitor_ConcurrentRecording(t *testing.T) {
	monitor := NewLatencyMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.Record("retrieval", time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, monitor.Snapshot()["retrieval"].Count)
}
