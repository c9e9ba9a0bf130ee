// Package metrics records per-stage latency statistics for SLA monitoring.
package metrics

import (
	"sync"
	"time"
)

// StageSummary is the aggregate view of one pipeline stage
type StageSummary struct {
	Count int     `json:"count"`
	AvgMS float64 `json:"avg_ms"`
	MaxMS float64 `json:"max_ms"`
}

type stageStats struct {
	count int
	total time.Duration
	max   time.Duration
}

// LatencyMonitor aggregates stage durations. Safe for concurrent use.
type LatencyMonitor struct {
	mu    sync.Mutex
	stats map[string]*stageStats
}

func NewLatencyMonitor() *LatencyMonitor {
	return &LatencyMonitor{stats: make(map[string]*stageStats)}
}

// Record adds one observation for a stage
func (m *LatencyMonitor) Record(stage string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.stats[stage]
	if !ok {
		stats = &stageStats{}
		m.stats[stage] = stats
	}
	stats.count++
	stats.total += duration
	if duration > stats.max {
		stats.max = duration
	}
}

// Snapshot returns the current summaries keyed by stage
func (m *LatencyMonitor) Snapshot() map[string]StageSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]StageSummary, len(m.stats))
	for stage, stats := range m.stats {
		summary := StageSummary{
			Count: stats.count,
			MaxMS: float64(stats.max) / float64(time.Millisecond),
		}
		if stats.count > 0 {
			summary.AvgMS = float64(stats.total) / float64(stats.count) / float64(time.Millisecond)
		}
		snapshot[stage] = summary
	}
	return snapshot
}
