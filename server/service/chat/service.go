// Package chat orchestrates message routing: classification, the routing
// policy, the handoff engine, and persistence meet here. It owns the single
// entry point callers invoke per inbound customer message.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
	"github.com/hrygo/shopsense/plugin/ai/metrics"
	"github.com/hrygo/shopsense/plugin/ai/routing"
	"github.com/hrygo/shopsense/server/handoff"
	"github.com/hrygo/shopsense/server/internal/observability"
	"github.com/hrygo/shopsense/store"
)

// HandoffUserMessage is what the customer sees when the conversation is
// routed to a human, whatever the underlying reason was.
const HandoffUserMessage = "You're being connected to a staff member, please hold on."

// Config assembles the collaborators of a ChatService.
type Config struct {
	Classifier classifier.Classifier
	Policy     *routing.Policy
	Store      *store.Store // nil keeps state in memory only
	Metrics    metrics.MetricsService
	Logger     *slog.Logger
}

// ChatService routes inbound customer messages and exposes the staff-facing
// presence and resolution entry points.
type ChatService struct {
	classifier classifier.Classifier
	policy     *routing.Policy
	engine     *handoff.Engine
	store      *store.Store
	metrics    metrics.MetricsService
	logger     *slog.Logger
}

// NewChatService wires the routing stack together. The engine persists
// through the store when one is configured, and fulfilled assignments feed
// the metrics service.
func NewChatService(cfg Config) *ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svc := &ChatService{
		classifier: cfg.Classifier,
		policy:     cfg.Policy,
		store:      cfg.Store,
		metrics:    cfg.Metrics,
		logger:     logger,
	}

	opts := []handoff.Option{handoff.WithLogger(logger)}
	if cfg.Store != nil {
		opts = append(opts, handoff.WithPersister(&storePersister{store: cfg.Store}))
	}
	if cfg.Metrics != nil {
		opts = append(opts, handoff.WithAssignmentListener(func(made handoff.AssignmentMade) {
			cfg.Metrics.RecordAssignment(context.Background(), made.WaitTime)
		}))
	}
	svc.engine = handoff.NewEngine(opts...)
	return svc
}

// Engine exposes the handoff engine for recovery and the janitor.
func (s *ChatService) Engine() *handoff.Engine {
	return s.engine
}

// NewConversationID mints a conversation id.
func NewConversationID() string {
	return "conv-" + shortuuid.New()
}

// AutoReply is the assistant's answer when no handoff is needed.
type AutoReply struct {
	Text               string                         `json:"text"`
	ProductSuggestions []classifier.ProductSuggestion `json:"product_suggestions,omitempty"`
	// OfferHuman asks the frontend to surface a "talk to a human" shortcut.
	OfferHuman bool `json:"offer_human"`
}

// RoutingOutcome is what the chat message handler returns to the customer.
type RoutingOutcome struct {
	ConversationID string     `json:"conversation_id"`
	HandedOff      bool       `json:"handed_off"`
	Message        string     `json:"message"`
	AutoReply      *AutoReply `json:"auto_reply,omitempty"`
}

// RouteMessage handles one inbound customer message. Classification runs
// fully outside the engine lock; the customer always receives either an
// auto-reply or a connect-to-staff message, never a raw error.
func (s *ChatService) RouteMessage(ctx context.Context, conversationID, userText string) (*RoutingOutcome, error) {
	rc := observability.NewRequestContext(s.logger, conversationID)
	started := rc.StartTime

	conv, err := s.engine.OpenConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Status == handoff.ConversationClosed {
		return nil, handoff.ErrInvalidTransition
	}

	result, classifyErr := s.classifier.Classify(ctx, classifier.SystemPrompt, userText)

	// The conversation may have been resolved while the model was thinking.
	// A decision against a CLOSED conversation is stale; drop it.
	conv, err = s.engine.Conversation(conversationID)
	if err == nil && conv.Status == handoff.ConversationClosed {
		rc.Debug("discarding stale classification for closed conversation")
		return &RoutingOutcome{ConversationID: conversationID, HandedOff: false}, nil
	}

	decision := s.policy.Decide(ctx, routing.Input{
		ConversationID: conversationID,
		Result:         result,
		ClassifyErr:    classifyErr,
		Started:        started,
	})

	s.recordDecision(ctx, decision)

	if decision.Handoff {
		if err := s.engine.EnqueueHandoff(ctx, conversationID, priorityFor(decision), string(decision.Reason)); err != nil {
			return nil, err
		}
		rc.Info("conversation handed off",
			slog.String(observability.LogFieldIntent, string(decision.Intent)),
			slog.String(observability.LogFieldHandoffReason, string(decision.Reason)),
			slog.Float64(observability.LogFieldConfidence, decision.Confidence),
			slog.Int(observability.LogFieldQueueDepth, s.engine.QueueDepth()))
		return &RoutingOutcome{
			ConversationID: conversationID,
			HandedOff:      true,
			Message:        HandoffUserMessage,
		}, nil
	}

	rc.Info("auto-reply",
		slog.String(observability.LogFieldIntent, string(decision.Intent)),
		slog.Float64(observability.LogFieldConfidence, decision.Confidence),
		slog.Int64(observability.LogFieldDuration, decision.Latency.Milliseconds()))
	return &RoutingOutcome{
		ConversationID: conversationID,
		HandedOff:      false,
		Message:        decision.ReplyText,
		AutoReply: &AutoReply{
			Text:               decision.ReplyText,
			ProductSuggestions: decision.ProductSuggestions,
			OfferHuman:         decision.OfferHuman,
		},
	}, nil
}

// priorityFor maps a handoff decision to a queue priority. Explicit requests
// and complaints jump the line over confidence-based handoffs.
func priorityFor(decision *routing.Decision) int {
	priority := 1
	switch decision.Reason {
	case routing.ReasonExplicitRequest:
		priority = 5
	case routing.ReasonToolFailure:
		priority = 3
	case routing.ReasonUnsupportedIntent:
		priority = 2
	}
	if decision.Intent == classifier.IntentComplaint && priority < 4 {
		priority = 4
	}
	return priority
}

func (s *ChatService) recordDecision(ctx context.Context, decision *routing.Decision) {
	if s.metrics != nil {
		s.metrics.RecordDecision(ctx, string(decision.Intent), string(decision.Reason), decision.Handoff, decision.Latency)
	}
	if s.store == nil {
		return
	}
	// Audit writes are best effort; routing must not fail on them.
	if _, err := s.store.CreateRoutingDecision(ctx, &store.RoutingDecision{
		ConversationID: decision.ConversationID,
		Intent:         string(decision.Intent),
		RawIntent:      decision.RawIntent,
		Confidence:     decision.Confidence,
		Handoff:        decision.Handoff,
		HandoffReason:  string(decision.Reason),
		LatencyMs:      decision.Latency.Milliseconds(),
		CreatedTs:      decision.CreatedAt.Unix(),
	}); err != nil {
		s.logger.Warn("failed to persist routing decision",
			observability.LogFieldConversationID, decision.ConversationID,
			"error", err)
	}
}

// StaffLogin registers the staff member as ONLINE(AVAILABLE).
func (s *ChatService) StaffLogin(ctx context.Context, staffID string, maxWorkload int) error {
	return s.engine.StaffLogin(ctx, staffID, maxWorkload)
}

// StaffLogout marks the staff member OFFLINE. Their workload survives.
func (s *ChatService) StaffLogout(ctx context.Context, staffID string) error {
	return s.engine.StaffLogout(ctx, staffID)
}

// StaffSetStatus toggles an online staff member between AVAILABLE and BUSY.
func (s *ChatService) StaffSetStatus(ctx context.Context, staffID string, status handoff.StaffStatus) error {
	return s.engine.StaffSetStatus(ctx, staffID, status)
}

// ResolveConversation closes a handed-off conversation and frees staff
// capacity, which immediately re-runs the scheduler.
func (s *ChatService) ResolveConversation(ctx context.Context, conversationID string) error {
	return s.engine.Resolve(ctx, conversationID)
}

// DashboardSnapshot is the read-only view for the staff dashboard.
type DashboardSnapshot struct {
	QueueDepth      int              `json:"queue_depth"`
	AverageWaitTime time.Duration    `json:"average_wait_time"`
	Staff           []*handoff.Staff `json:"staff"`
	Waiting         []*handoff.Entry `json:"waiting"`
}

// Dashboard returns copy-on-read snapshots of the queue and staff state.
func (s *ChatService) Dashboard(context.Context) *DashboardSnapshot {
	return &DashboardSnapshot{
		QueueDepth:      s.engine.QueueDepth(),
		AverageWaitTime: s.engine.AverageWaitTime(),
		Staff:           s.engine.StaffSnapshot(),
		Waiting:         s.engine.WaitingSnapshot(),
	}
}
