// Package routing decides, per classified message, whether the assistant
// answers autonomously or the conversation is handed off to a human.
package routing

import (
	"time"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
	"github.com/hrygo/shopsense/plugin/ai/tools"
)

// HandoffReason enumerates why a conversation was (or was not) handed off.
type HandoffReason string

const (
	ReasonNone              HandoffReason = "NONE"
	ReasonLowConfidence     HandoffReason = "LOW_CONFIDENCE"
	ReasonExplicitRequest   HandoffReason = "EXPLICIT_REQUEST"
	ReasonUnsupportedIntent HandoffReason = "UNSUPPORTED_INTENT"
	ReasonToolFailure       HandoffReason = "TOOL_FAILURE"
)

// Decision is the audit record of one routing invocation. Exactly one is
// produced per inbound message, auto-replies included, and it is never
// mutated after creation.
type Decision struct {
	ConversationID string
	Intent         classifier.Intent
	RawIntent      string
	Confidence     float64
	Handoff        bool
	Reason         HandoffReason

	// Auto-reply payload, empty when Handoff is true.
	ReplyText          string
	ProductSuggestions []classifier.ProductSuggestion
	ToolResults        []tools.Result
	// OfferHuman marks an auto-reply that should proactively offer a human
	// agent (classifier suggested a handoff without requiring one).
	OfferHuman bool

	Latency   time.Duration
	CreatedAt time.Time
}
