// Package v1 exposes the routing engine over HTTP: the customer chat
// endpoint, staff presence endpoints, and the dashboard reads.
package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/shopsense/internal/profile"
	"github.com/hrygo/shopsense/plugin/ai/metrics"
	"github.com/hrygo/shopsense/server/middleware"
	"github.com/hrygo/shopsense/server/service/chat"
	"github.com/hrygo/shopsense/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	ChatService *chat.ChatService
	Metrics     metrics.MetricsService

	logger      *slog.Logger
	chatLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, chatService *chat.ChatService, metricsService metrics.MetricsService) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		ChatService: chatService,
		Metrics:     metricsService,
		logger:      slog.Default(),
		chatLimiter: middleware.NewRateLimiter(chatMessageRate, chatMessageBurst),
	}
}

// RegisterRoutes registers the v1 routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiV1 := echoServer.Group("/api/v1")

	apiV1.POST("/chat/messages", s.RouteChatMessage)

	apiV1.POST("/staff/login", s.StaffLogin)
	apiV1.POST("/staff/logout", s.StaffLogout)
	apiV1.POST("/staff/status", s.StaffSetStatus)

	apiV1.POST("/conversations/:id/resolve", s.ResolveConversation)
	apiV1.GET("/conversations/:id/decisions", s.ListConversationDecisions)

	apiV1.GET("/dashboard/handoff", s.GetHandoffDashboard)
	apiV1.GET("/dashboard/metrics", s.GetRoutingMetrics)
}
