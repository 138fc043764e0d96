package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/shopsense/plugin/ai/metrics"
	apierrors "github.com/hrygo/shopsense/server/internal/errors"
)

// StaffView is one staff member on the dashboard.
type StaffView struct {
	StaffID     string `json:"staff_id"`
	Online      bool   `json:"online"`
	Status      string `json:"status"`
	Workload    int    `json:"workload"`
	MaxWorkload int    `json:"max_workload"`
}

// WaitingView is one waiting conversation on the dashboard.
type WaitingView struct {
	ConversationID string `json:"conversation_id"`
	Priority       int    `json:"priority"`
	EnqueuedTs     int64  `json:"enqueued_ts"`
	WaitingSeconds int64  `json:"waiting_seconds"`
}

// HandoffDashboardResponse is the live view for the staff dashboard.
type HandoffDashboardResponse struct {
	QueueDepth         int           `json:"queue_depth"`
	AverageWaitSeconds int64         `json:"average_wait_seconds"`
	Staff              []StaffView   `json:"staff"`
	Waiting            []WaitingView `json:"waiting"`
}

// GetHandoffDashboard returns the live handoff queue and staff state.
// GET /api/v1/dashboard/handoff
func (s *APIV1Service) GetHandoffDashboard(c echo.Context) error {
	snapshot := s.ChatService.Dashboard(c.Request().Context())

	response := HandoffDashboardResponse{
		QueueDepth:         snapshot.QueueDepth,
		AverageWaitSeconds: int64(snapshot.AverageWaitTime.Seconds()),
		Staff:              make([]StaffView, 0, len(snapshot.Staff)),
		Waiting:            make([]WaitingView, 0, len(snapshot.Waiting)),
	}
	for _, staff := range snapshot.Staff {
		response.Staff = append(response.Staff, StaffView{
			StaffID:     staff.ID,
			Online:      staff.Online,
			Status:      string(staff.Status),
			Workload:    staff.Workload,
			MaxWorkload: staff.MaxWorkload,
		})
	}
	now := time.Now()
	for _, entry := range snapshot.Waiting {
		response.Waiting = append(response.Waiting, WaitingView{
			ConversationID: entry.ConversationID,
			Priority:       entry.Priority,
			EnqueuedTs:     entry.EnqueuedAt.Unix(),
			WaitingSeconds: int64(now.Sub(entry.EnqueuedAt).Seconds()),
		})
	}
	return c.JSON(http.StatusOK, response)
}

// RoutingMetricsResponse summarizes routing behavior over a time range.
type RoutingMetricsResponse struct {
	TimeRange       string           `json:"time_range"`
	DecisionCount   int64            `json:"decision_count"`
	HandoffCount    int64            `json:"handoff_count"`
	HandoffRate     float64          `json:"handoff_rate"`
	P50LatencyMs    int64            `json:"p50_latency_ms"`
	P95LatencyMs    int64            `json:"p95_latency_ms"`
	ReasonCounts    map[string]int64 `json:"reason_counts"`
	AssignmentCount int64            `json:"assignment_count"`
	AvgWaitSeconds  int64            `json:"avg_wait_seconds"`
}

// GetRoutingMetrics returns aggregated routing metrics.
// GET /api/v1/dashboard/metrics?range=24h
func (s *APIV1Service) GetRoutingMetrics(c echo.Context) error {
	timeRange := c.QueryParam("range")
	if timeRange == "" {
		timeRange = "24h"
	}
	start, err := parseTimeRange(timeRange)
	if err != nil {
		return s.errorJSON(c, apierrors.InvalidArgument("invalid time range"))
	}

	stats, err := s.Metrics.GetStats(c.Request().Context(), metrics.TimeRange{Start: start, End: time.Now()})
	if err != nil {
		return s.errorJSON(c, apierrors.StorageUnavailable("failed to query metrics", err))
	}

	response := RoutingMetricsResponse{
		TimeRange:       timeRange,
		DecisionCount:   stats.DecisionCount,
		HandoffCount:    stats.HandoffCount,
		P50LatencyMs:    stats.LatencyP50.Milliseconds(),
		P95LatencyMs:    stats.LatencyP95.Milliseconds(),
		ReasonCounts:    stats.ReasonCounts,
		AssignmentCount: stats.AssignmentCount,
		AvgWaitSeconds:  int64(stats.AvgWaitTime.Seconds()),
	}
	if stats.DecisionCount > 0 {
		response.HandoffRate = float64(stats.HandoffCount) / float64(stats.DecisionCount)
	}
	return c.JSON(http.StatusOK, response)
}

// parseTimeRange parses a time range string and returns the start time.
func parseTimeRange(timeRange string) (time.Time, error) {
	now := time.Now()
	switch timeRange {
	case "1h":
		return now.Add(-1 * time.Hour), nil
	case "24h":
		return now.Add(-24 * time.Hour), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	case "30d":
		return now.Add(-30 * 24 * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid time range: %s (valid: 1h, 24h, 7d, 30d)", timeRange)
	}
}
