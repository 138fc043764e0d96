package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/shopsense/store"
)

// Service implements the MetricsService interface. Recent decisions are
// aggregated in memory; historical ones are read back from the
// routing_decision audit table when a time range is requested.
type Service struct {
	store      *store.Store
	aggregator *Aggregator
}

// NewService creates a new metrics service.
// If store is nil, stats cover in-memory data only.
func NewService(s *store.Store) *Service {
	svc := &Service{
		store:      s,
		aggregator: NewAggregator(),
	}
	if s == nil {
		slog.Warn("metrics service initialized without store (historical stats disabled)")
	}
	return svc
}

// RecordDecision records one routing decision.
func (s *Service) RecordDecision(_ context.Context, intent string, reason string, handoff bool, latency time.Duration) {
	s.aggregator.RecordDecision(intent, reason, handoff, latency)
}

// RecordAssignment records the wait time of one fulfilled assignment.
func (s *Service) RecordAssignment(_ context.Context, wait time.Duration) {
	s.aggregator.RecordAssignment(wait)
}

// GetStats retrieves aggregated statistics for the given time range.
func (s *Service) GetStats(ctx context.Context, timeRange TimeRange) (*RoutingMetrics, error) {
	stats := s.aggregator.GetCurrentStats()
	if s.store == nil || timeRange.Start.IsZero() {
		return stats, nil
	}

	startTs := timeRange.Start.Unix()
	endTs := timeRange.End.Unix()
	if timeRange.End.IsZero() {
		endTs = time.Now().Unix()
	}
	limit := 10000
	decisions, err := s.store.ListRoutingDecisions(ctx, &store.FindRoutingDecision{
		CreatedTsAfter:  &startTs,
		CreatedTsBefore: &endTs,
		Limit:           &limit,
	})
	if err != nil {
		slog.Warn("failed to query persisted routing decisions", "error", err)
		return stats, nil
	}

	// Persisted rows overlap the in-memory window; rebuild counts from
	// the audit table alone for the requested range. Assignment waits live
	// only in memory, filtered to the same range.
	merged := &RoutingMetrics{
		IntentStats:  make(map[string]*IntentStat),
		ReasonCounts: make(map[string]int64),
	}
	merged.AssignmentCount, merged.AvgWaitTime = s.aggregator.AssignmentStats(timeRange)

	type agg struct {
		count      int64
		handoffs   int64
		latencySum int64
	}
	intentAggs := make(map[string]*agg)
	latencies := make([]int64, 0, len(decisions))

	for _, d := range decisions {
		merged.DecisionCount++
		if d.Handoff {
			merged.HandoffCount++
		}
		merged.ReasonCounts[d.HandoffReason]++
		latencies = append(latencies, d.LatencyMs)

		a, exists := intentAggs[d.Intent]
		if !exists {
			a = &agg{}
			intentAggs[d.Intent] = a
		}
		a.count++
		if d.Handoff {
			a.handoffs++
		}
		a.latencySum += d.LatencyMs
	}

	for intent, a := range intentAggs {
		stat := &IntentStat{Count: a.count}
		if a.count > 0 {
			stat.HandoffRate = float32(a.handoffs) / float32(a.count)
			stat.AvgLatency = time.Duration(a.latencySum/a.count) * time.Millisecond
		}
		merged.IntentStats[intent] = stat
	}

	merged.LatencyP50 = time.Duration(percentile(latencies, 50)) * time.Millisecond
	merged.LatencyP95 = time.Duration(percentile(latencies, 95)) * time.Millisecond
	return merged, nil
}
