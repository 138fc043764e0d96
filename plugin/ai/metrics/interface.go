// Package metrics aggregates routing and handoff metrics for the staff
// dashboard: decision counts per intent and handoff reason, classification
// latency percentiles, and assignment wait times.
package metrics

import (
	"context"
	"time"
)

// MetricsService defines the routing metrics service interface.
type MetricsService interface {
	// RecordDecision records one routing decision.
	RecordDecision(ctx context.Context, intent string, reason string, handoff bool, latency time.Duration)

	// RecordAssignment records the wait time of one fulfilled assignment.
	RecordAssignment(ctx context.Context, wait time.Duration)

	// GetStats retrieves statistics data.
	GetStats(ctx context.Context, timeRange TimeRange) (*RoutingMetrics, error)
}

// TimeRange represents a time range for querying metrics.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RoutingMetrics represents aggregated routing metrics.
type RoutingMetrics struct {
	DecisionCount   int64                  `json:"decision_count"`
	HandoffCount    int64                  `json:"handoff_count"`
	LatencyP50      time.Duration          `json:"latency_p50"`
	LatencyP95      time.Duration          `json:"latency_p95"`
	IntentStats     map[string]*IntentStat `json:"intent_stats"`
	ReasonCounts    map[string]int64       `json:"reason_counts"`
	AssignmentCount int64                  `json:"assignment_count"`
	AvgWaitTime     time.Duration          `json:"avg_wait_time"`
}

// IntentStat represents statistics for a single intent.
type IntentStat struct {
	Count       int64         `json:"count"`
	HandoffRate float32       `json:"handoff_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}
