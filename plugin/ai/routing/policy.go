package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
	"github.com/hrygo/shopsense/plugin/ai/tools"
)

// Policy turns a classification result into a routing decision. The
// confidence threshold comes from configuration, never from the policy
// itself. Tool execution is injected so the decision logic stays testable
// without live collaborators.
type Policy struct {
	threshold float64
	tools     tools.Runner
}

// NewPolicy creates a routing policy.
func NewPolicy(confidenceThreshold float64, runner tools.Runner) *Policy {
	return &Policy{
		threshold: confidenceThreshold,
		tools:     runner,
	}
}

// Input carries everything one Decide invocation consumes.
type Input struct {
	ConversationID string
	Result         *classifier.ClassificationResult
	ClassifyErr    error
	// Started is when handling of the inbound message began; the decision
	// latency is measured from it.
	Started time.Time
}

// Decide applies the routing rules in order:
//
//  1. classifier failure        -> handoff, UNSUPPORTED_INTENT (fail-safe)
//  2. explicit need_handoff     -> handoff, EXPLICIT_REQUEST
//  3. unrecognized intent       -> handoff, UNSUPPORTED_INTENT
//  4. confidence below threshold-> handoff, LOW_CONFIDENCE
//  5. any tool lookup fails     -> handoff, TOOL_FAILURE
//  6. otherwise                 -> auto-reply, optionally flagged to offer a human
//
// Every invocation produces exactly one Decision regardless of branch.
func (p *Policy) Decide(ctx context.Context, in Input) *Decision {
	decision := &Decision{
		ConversationID: in.ConversationID,
		Reason:         ReasonNone,
		CreatedAt:      time.Now(),
	}
	started := in.Started
	if started.IsZero() {
		started = decision.CreatedAt
	}
	defer func() {
		decision.Latency = time.Since(started)
	}()

	if in.ClassifyErr != nil || in.Result == nil {
		decision.Intent = classifier.IntentUnknown
		decision.Handoff = true
		decision.Reason = ReasonUnsupportedIntent
		if in.ClassifyErr != nil {
			slog.Warn("classifier failed, forcing handoff",
				"conversation_id", in.ConversationID,
				"error", in.ClassifyErr)
		}
		return decision
	}

	result := in.Result
	decision.Intent = result.Intent
	decision.RawIntent = result.RawIntent
	decision.Confidence = result.Confidence

	if result.NeedHandoff {
		decision.Handoff = true
		decision.Reason = ReasonExplicitRequest
		return decision
	}

	if result.Intent == classifier.IntentUnknown {
		decision.Handoff = true
		decision.Reason = ReasonUnsupportedIntent
		return decision
	}

	if result.Confidence < p.threshold {
		decision.Handoff = true
		decision.Reason = ReasonLowConfidence
		return decision
	}

	if len(result.ToolRequests) > 0 && p.tools != nil {
		toolResults, err := p.tools.RunAll(ctx, result.ToolRequests)
		if err != nil {
			slog.Warn("tool execution failed, forcing handoff",
				"conversation_id", in.ConversationID,
				"error", err)
			decision.Handoff = true
			decision.Reason = ReasonToolFailure
			return decision
		}
		decision.ToolResults = toolResults
	}

	decision.ReplyText = result.ReplyText
	decision.ProductSuggestions = result.ProductSuggestions
	decision.OfferHuman = result.SuggestHandoff
	return decision
}

// Threshold returns the configured confidence threshold.
func (p *Policy) Threshold() float64 {
	return p.threshold
}
