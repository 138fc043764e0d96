package metrics

import (
	"sort"
	"sync"
	"time"
)

// Aggregator aggregates routing metrics in memory.
type Aggregator struct {
	mu sync.RWMutex

	// Intent metrics: key = "hourBucket|intent"
	intentMetrics map[string]*intentBucket

	// Handoff reason counts: key = "hourBucket|reason"
	reasonCounts map[string]*reasonBucket

	// Assignment wait samples, timestamped so ranged queries can filter.
	assignmentWaits []assignmentSample

	now func() time.Time
}

type assignmentSample struct {
	at          time.Time
	waitSeconds int64
}

type intentBucket struct {
	hourBucket    time.Time
	intent        string
	decisionCount int64
	handoffCount  int64
	latencies     []int64 // in milliseconds
}

type reasonBucket struct {
	hourBucket time.Time
	reason     string
	count      int64
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		intentMetrics: make(map[string]*intentBucket),
		reasonCounts:  make(map[string]*reasonBucket),
		now:           time.Now,
	}
}

// RecordDecision records a single routing decision.
func (a *Aggregator) RecordDecision(intent string, reason string, handoff bool, latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hourBucket := truncateToHour(a.now())
	key := makeKey(hourBucket, intent)

	bucket, exists := a.intentMetrics[key]
	if !exists {
		bucket = &intentBucket{
			hourBucket: hourBucket,
			intent:     intent,
			latencies:  make([]int64, 0, 100),
		}
		a.intentMetrics[key] = bucket
	}

	bucket.decisionCount++
	if handoff {
		bucket.handoffCount++
	}
	bucket.latencies = append(bucket.latencies, latency.Milliseconds())

	reasonKey := makeKey(hourBucket, reason)
	rb, exists := a.reasonCounts[reasonKey]
	if !exists {
		rb = &reasonBucket{hourBucket: hourBucket, reason: reason}
		a.reasonCounts[reasonKey] = rb
	}
	rb.count++
}

// RecordAssignment records the wait time of one fulfilled assignment.
func (a *Aggregator) RecordAssignment(wait time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assignmentWaits = append(a.assignmentWaits, assignmentSample{
		at:          a.now(),
		waitSeconds: int64(wait.Seconds()),
	})
}

// AssignmentStats returns the assignment count and mean wait over samples
// recorded inside the range. A zero Start covers all samples; a zero End
// means now.
func (a *Aggregator) AssignmentStats(timeRange TimeRange) (int64, time.Duration) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	end := timeRange.End
	if end.IsZero() {
		end = a.now()
	}

	var count, sum int64
	for _, sample := range a.assignmentWaits {
		if !timeRange.Start.IsZero() && sample.at.Before(timeRange.Start) {
			continue
		}
		if sample.at.After(end) {
			continue
		}
		count++
		sum += sample.waitSeconds
	}
	if count == 0 {
		return 0, 0
	}
	return count, time.Duration(sum/count) * time.Second
}

// GetCurrentStats returns aggregated stats from memory.
func (a *Aggregator) GetCurrentStats() *RoutingMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := &RoutingMetrics{
		IntentStats:  make(map[string]*IntentStat),
		ReasonCounts: make(map[string]int64),
	}

	allLatencies := make([]int64, 0)
	for _, bucket := range a.intentMetrics {
		stats.DecisionCount += bucket.decisionCount
		stats.HandoffCount += bucket.handoffCount
		allLatencies = append(allLatencies, bucket.latencies...)

		if _, exists := stats.IntentStats[bucket.intent]; !exists {
			stats.IntentStats[bucket.intent] = &IntentStat{}
		}
		intentStat := stats.IntentStats[bucket.intent]
		intentStat.Count += bucket.decisionCount
		if bucket.decisionCount > 0 {
			intentStat.HandoffRate = float32(bucket.handoffCount) / float32(bucket.decisionCount)
			avgMs := sumLatencies(bucket.latencies) / bucket.decisionCount
			intentStat.AvgLatency = time.Duration(avgMs) * time.Millisecond
		}
	}

	for _, rb := range a.reasonCounts {
		stats.ReasonCounts[rb.reason] += rb.count
	}

	stats.LatencyP50 = time.Duration(percentile(allLatencies, 50)) * time.Millisecond
	stats.LatencyP95 = time.Duration(percentile(allLatencies, 95)) * time.Millisecond

	stats.AssignmentCount = int64(len(a.assignmentWaits))
	if stats.AssignmentCount > 0 {
		var sum int64
		for _, sample := range a.assignmentWaits {
			sum += sample.waitSeconds
		}
		stats.AvgWaitTime = time.Duration(sum/stats.AssignmentCount) * time.Second
	}

	return stats
}

// Reset clears all in-memory metrics.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.intentMetrics = make(map[string]*intentBucket)
	a.reasonCounts = make(map[string]*reasonBucket)
	a.assignmentWaits = nil
}

// Helper functions

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func makeKey(hourBucket time.Time, name string) string {
	return hourBucket.Format(time.RFC3339) + "|" + name
}

func sumLatencies(values []int64) int64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	return sum
}

func percentile(values []int64, p int) int64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
