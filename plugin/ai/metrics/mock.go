package metrics

import (
	"context"
	"sync"
	"time"
)

// MockMetricsService is a mock implementation of MetricsService for testing.
type MockMetricsService struct {
	mu          sync.RWMutex
	decisions   []decisionRecord
	assignments []time.Duration
}

type decisionRecord struct {
	Intent  string
	Reason  string
	Handoff bool
	Latency time.Duration
}

// NewMockMetricsService creates a new MockMetricsService.
func NewMockMetricsService() *MockMetricsService {
	return &MockMetricsService{}
}

// RecordDecision records one routing decision.
func (m *MockMetricsService) RecordDecision(_ context.Context, intent string, reason string, handoff bool, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, decisionRecord{
		Intent:  intent,
		Reason:  reason,
		Handoff: handoff,
		Latency: latency,
	})
}

// RecordAssignment records the wait time of one fulfilled assignment.
func (m *MockMetricsService) RecordAssignment(_ context.Context, wait time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, wait)
}

// GetStats retrieves statistics data.
func (m *MockMetricsService) GetStats(_ context.Context, _ TimeRange) (*RoutingMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &RoutingMetrics{
		IntentStats:  make(map[string]*IntentStat),
		ReasonCounts: make(map[string]int64),
	}

	latencies := make([]int64, 0, len(m.decisions))
	for _, d := range m.decisions {
		stats.DecisionCount++
		if d.Handoff {
			stats.HandoffCount++
		}
		stats.ReasonCounts[d.Reason]++
		latencies = append(latencies, d.Latency.Milliseconds())

		stat, exists := stats.IntentStats[d.Intent]
		if !exists {
			stat = &IntentStat{}
			stats.IntentStats[d.Intent] = stat
		}
		stat.Count++
	}
	stats.LatencyP50 = time.Duration(percentile(latencies, 50)) * time.Millisecond
	stats.LatencyP95 = time.Duration(percentile(latencies, 95)) * time.Millisecond

	stats.AssignmentCount = int64(len(m.assignments))
	var waitSum time.Duration
	for _, w := range m.assignments {
		waitSum += w
	}
	if stats.AssignmentCount > 0 {
		stats.AvgWaitTime = waitSum / time.Duration(stats.AssignmentCount)
	}
	return stats, nil
}

// DecisionCount returns how many decisions have been recorded.
func (m *MockMetricsService) DecisionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.decisions)
}

// Clear removes all recorded metrics.
func (m *MockMetricsService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = nil
	m.assignments = nil
}

var _ MetricsService = (*MockMetricsService)(nil)
