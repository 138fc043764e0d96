package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
	"github.com/hrygo/shopsense/plugin/ai/tools"
)

func TestPolicy_Decide(t *testing.T) {
	tests := []struct {
		name           string
		threshold      float64
		result         *classifier.ClassificationResult
		classifyErr    error
		toolErr        error
		wantHandoff    bool
		wantReason     HandoffReason
		wantOfferHuman bool
	}{
		{
			name:        "Classifier timeout forces handoff",
			threshold:   0.75,
			classifyErr: classifier.Timeout("deadline exceeded", nil),
			wantHandoff: true,
			wantReason:  ReasonUnsupportedIntent,
		},
		{
			name:      "Explicit handoff request",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:      classifier.IntentHumanRequest,
				Confidence:  0.95,
				NeedHandoff: true,
			},
			wantHandoff: true,
			wantReason:  ReasonExplicitRequest,
		},
		{
			name:      "Unknown intent forces handoff",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:     classifier.IntentUnknown,
				RawIntent:  "warranty_claim",
				Confidence: 0.90,
			},
			wantHandoff: true,
			wantReason:  ReasonUnsupportedIntent,
		},
		{
			name:      "Low confidence forces handoff",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:     classifier.IntentOrderStatus,
				Confidence: 0.40,
			},
			wantHandoff: true,
			wantReason:  ReasonLowConfidence,
		},
		{
			name:      "Tool failure forces handoff",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:       classifier.IntentShippingFee,
				Confidence:   0.90,
				ReplyText:    "Shipping costs...",
				ToolRequests: []classifier.ToolRequest{{Name: "shipping_fee"}},
			},
			toolErr:     errors.New("carrier API down"),
			wantHandoff: true,
			wantReason:  ReasonToolFailure,
		},
		{
			name:      "Confident result auto-replies",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:     classifier.IntentChitchat,
				Confidence: 0.95,
				ReplyText:  "Hello!",
			},
			wantHandoff: false,
			wantReason:  ReasonNone,
		},
		{
			name:      "Confidence exactly at threshold auto-replies",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:     classifier.IntentStoreInfo,
				Confidence: 0.75,
				ReplyText:  "We are open 9 to 6.",
			},
			wantHandoff: false,
			wantReason:  ReasonNone,
		},
		{
			name:      "Suggested handoff still auto-replies with offer",
			threshold: 0.75,
			result: &classifier.ClassificationResult{
				Intent:         classifier.IntentComplaint,
				Confidence:     0.85,
				ReplyText:      "I am sorry to hear that.",
				SuggestHandoff: true,
			},
			wantHandoff:    false,
			wantReason:     ReasonNone,
			wantOfferHuman: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := tools.NewMockRunner()
			runner.Err = tt.toolErr
			policy := NewPolicy(tt.threshold, runner)

			decision := policy.Decide(context.Background(), Input{
				ConversationID: "c-1",
				Result:         tt.result,
				ClassifyErr:    tt.classifyErr,
			})

			require.NotNil(t, decision, "every invocation must produce a decision")
			assert.Equal(t, tt.wantHandoff, decision.Handoff, "handoff")
			assert.Equal(t, tt.wantReason, decision.Reason, "reason")
			assert.Equal(t, tt.wantOfferHuman, decision.OfferHuman, "offer human")
			assert.Equal(t, "c-1", decision.ConversationID)
			assert.False(t, decision.CreatedAt.IsZero())
			if tt.wantHandoff {
				assert.Empty(t, decision.ReplyText, "handoff decisions carry no reply")
			}
		})
	}
}

// Confidence monotonicity: confidence at or above threshold with no explicit
// request and all tools succeeding never hands off.
func TestPolicy_ConfidenceMonotonicity(t *testing.T) {
	policy := NewPolicy(0.6, tools.NewMockRunner())

	for _, confidence := range []float64{0.6, 0.7, 0.85, 0.99, 1.0} {
		decision := policy.Decide(context.Background(), Input{
			ConversationID: "c-mono",
			Result: &classifier.ClassificationResult{
				Intent:     classifier.IntentPromotion,
				Confidence: confidence,
				ReplyText:  "Use code SUMMER10.",
			},
		})
		assert.False(t, decision.Handoff, "confidence %v must not hand off", confidence)
	}
}

func TestPolicy_ToolResultsAttached(t *testing.T) {
	runner := tools.NewMockRunner()
	runner.Results = []tools.Result{{Name: "promotion", Data: map[string]any{"promotions": []any{}}}}
	policy := NewPolicy(0.5, runner)

	decision := policy.Decide(context.Background(), Input{
		ConversationID: "c-2",
		Result: &classifier.ClassificationResult{
			Intent:       classifier.IntentPromotion,
			Confidence:   0.9,
			ReplyText:    "Current promotions...",
			ToolRequests: []classifier.ToolRequest{{Name: "promotion"}},
		},
	})

	assert.False(t, decision.Handoff)
	require.Len(t, decision.ToolResults, 1)
	assert.Equal(t, 1, runner.RunCount())
}

// Tools must not run when the decision already fell through to a handoff.
func TestPolicy_NoToolRunOnLowConfidence(t *testing.T) {
	runner := tools.NewMockRunner()
	policy := NewPolicy(0.75, runner)

	decision := policy.Decide(context.Background(), Input{
		ConversationID: "c-3",
		Result: &classifier.ClassificationResult{
			Intent:       classifier.IntentShippingFee,
			Confidence:   0.30,
			ToolRequests: []classifier.ToolRequest{{Name: "shipping_fee"}},
		},
	})

	assert.True(t, decision.Handoff)
	assert.Equal(t, 0, runner.RunCount())
}
