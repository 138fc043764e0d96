package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/shopsense/server/handoff"
	apierrors "github.com/hrygo/shopsense/server/internal/errors"
	"github.com/hrygo/shopsense/server/service/chat"
)

// A conversation is a single customer typing; two messages per second
// with a small burst is well above human pace.
const (
	chatMessageRate  = 2
	chatMessageBurst = 5
)

// RouteChatMessageRequest is one inbound customer message.
type RouteChatMessageRequest struct {
	// ConversationID is optional; a new conversation is opened when empty.
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// RouteChatMessage handles one customer message.
// POST /api/v1/chat/messages
func (s *APIV1Service) RouteChatMessage(c echo.Context) error {
	request := &RouteChatMessageRequest{}
	if err := c.Bind(request); err != nil {
		return s.errorJSON(c, apierrors.InvalidArgument("malformed request body"))
	}
	if strings.TrimSpace(request.Text) == "" {
		return s.errorJSON(c, apierrors.InvalidArgument("text is required"))
	}

	conversationID := request.ConversationID
	if conversationID == "" {
		conversationID = chat.NewConversationID()
	}
	if !s.chatLimiter.Allow(conversationID) {
		return s.errorJSON(c, apierrors.RateLimitExceeded("too many messages, slow down"))
	}

	outcome, err := s.ChatService.RouteMessage(c.Request().Context(), conversationID, request.Text)
	if err == handoff.ErrInvalidTransition {
		return s.errorJSON(c, apierrors.ConversationClosed(conversationID))
	}
	if err != nil {
		return s.errorJSON(c, apierrors.StorageUnavailable("failed to route message", err),
			"conversation_id", conversationID)
	}
	return c.JSON(http.StatusOK, outcome)
}
