package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/shopsense/server/handoff"
	apierrors "github.com/hrygo/shopsense/server/internal/errors"
	"github.com/hrygo/shopsense/store"
)

// ResolveConversation closes a handed-off conversation, freeing the staff
// member's capacity.
// POST /api/v1/conversations/:id/resolve
func (s *APIV1Service) ResolveConversation(c echo.Context) error {
	conversationID := c.Param("id")
	if conversationID == "" {
		return s.errorJSON(c, apierrors.InvalidArgument("conversation id is required"))
	}

	err := s.ChatService.ResolveConversation(c.Request().Context(), conversationID)
	switch err {
	case nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "resolved"})
	case handoff.ErrNotInService:
		return s.errorJSON(c, apierrors.InvalidTransition("conversation is not in service"))
	case handoff.ErrUnknownConversation:
		return s.errorJSON(c, apierrors.ConversationNotFound(conversationID))
	default:
		return s.errorJSON(c, apierrors.StorageUnavailable("failed to resolve conversation", err),
			"conversation_id", conversationID)
	}
}

// RoutingDecisionResponse is one persisted routing decision.
type RoutingDecisionResponse struct {
	Intent        string  `json:"intent"`
	RawIntent     string  `json:"raw_intent,omitempty"`
	Confidence    float64 `json:"confidence"`
	Handoff       bool    `json:"handoff"`
	HandoffReason string  `json:"handoff_reason"`
	LatencyMs     int64   `json:"latency_ms"`
	CreatedTs     int64   `json:"created_ts"`
}

// ListConversationDecisions returns the routing audit trail of a conversation.
// GET /api/v1/conversations/:id/decisions
func (s *APIV1Service) ListConversationDecisions(c echo.Context) error {
	conversationID := c.Param("id")
	if conversationID == "" {
		return s.errorJSON(c, apierrors.InvalidArgument("conversation id is required"))
	}
	if s.Store == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Code:  string(apierrors.ErrCodeStorageUnavailable),
			Error: "decision audit requires persistence",
		})
	}

	limit := 100
	decisions, err := s.Store.ListRoutingDecisions(c.Request().Context(), &store.FindRoutingDecision{
		ConversationID: &conversationID,
		Limit:          &limit,
	})
	if err != nil {
		return s.errorJSON(c, apierrors.StorageUnavailable("failed to list decisions", err),
			"conversation_id", conversationID)
	}

	response := make([]RoutingDecisionResponse, 0, len(decisions))
	for _, decision := range decisions {
		response = append(response, RoutingDecisionResponse{
			Intent:        decision.Intent,
			RawIntent:     decision.RawIntent,
			Confidence:    decision.Confidence,
			Handoff:       decision.Handoff,
			HandoffReason: decision.HandoffReason,
			LatencyMs:     decision.LatencyMs,
			CreatedTs:     decision.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, response)
}
