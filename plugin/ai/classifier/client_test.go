package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Intent
	}{
		{name: "Known intent", input: "order_status", expected: IntentOrderStatus},
		{name: "Known intent with spaces", input: "  shipping_fee  ", expected: IntentShippingFee},
		{name: "Known intent uppercase", input: "PROMOTION", expected: IntentPromotion},
		{name: "Human request", input: "human_request", expected: IntentHumanRequest},
		{name: "Unrecognized intent", input: "order_cancellation_v2", expected: IntentUnknown},
		{name: "Empty string", input: "", expected: IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIntent(tt.input))
		})
	}
}

func TestParseResponse(t *testing.T) {
	content := `{
		"intent": "product_search",
		"confidence": 0.92,
		"reply": "We have three espresso machines in stock.",
		"need_handoff": false,
		"suggest_handoff": false,
		"tool_requests": [{"name": "product_search", "arguments": {"query": "espresso machine"}}],
		"product_suggestions": [{"product_id": "p-100", "name": "Espresso One", "price": 199.0}]
	}`

	result, err := ParseResponse(content)
	require.NoError(t, err)
	assert.Equal(t, IntentProductSearch, result.Intent)
	assert.Equal(t, "product_search", result.RawIntent)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.False(t, result.NeedHandoff)
	require.Len(t, result.ToolRequests, 1)
	assert.Equal(t, "product_search", result.ToolRequests[0].Name)
	require.Len(t, result.ProductSuggestions, 1)
	assert.Equal(t, "p-100", result.ProductSuggestions[0].ProductID)
}

func TestParseResponse_MarkdownFences(t *testing.T) {
	content := "```json\n{\"intent\": \"chitchat\", \"confidence\": 0.8, \"reply\": \"hi\", \"need_handoff\": false, \"suggest_handoff\": false}\n```"

	result, err := ParseResponse(content)
	require.NoError(t, err)
	assert.Equal(t, IntentChitchat, result.Intent)
}

func TestParseResponse_UnknownIntentPreservesRaw(t *testing.T) {
	content := `{"intent": "gift_wrapping", "confidence": 0.7, "need_handoff": false, "suggest_handoff": false}`

	result, err := ParseResponse(content)
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, result.Intent)
	assert.Equal(t, "gift_wrapping", result.RawIntent)
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Not JSON", content: "I think the customer wants a refund."},
		{name: "Empty", content: ""},
		{name: "Confidence out of range", content: `{"intent": "chitchat", "confidence": 1.7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.content)
			require.Error(t, err)
			cerr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, ErrCodeMalformedResponse, cerr.Code)
			assert.False(t, cerr.Retryable())
		})
	}
}

func TestOpenAIClassifier_NotConfigured(t *testing.T) {
	c := NewOpenAIClassifier(Config{})

	_, err := c.Classify(context.Background(), SystemPrompt, "where is my order?")
	require.Error(t, err)
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotConfigured, cerr.Code)
	assert.False(t, cerr.Retryable())
}

// Empty inputs are a caller bug and surface as a plain error, not as one of
// the call-failure codes.
func TestOpenAIClassifier_EmptyInput(t *testing.T) {
	c := NewOpenAIClassifier(Config{APIKey: "test-key"})

	_, err := c.Classify(context.Background(), "", "hello")
	require.Error(t, err)
	_, ok := AsError(err)
	assert.False(t, ok)

	_, err = c.Classify(context.Background(), SystemPrompt, "")
	require.Error(t, err)
	_, ok = AsError(err)
	assert.False(t, ok)
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, Unreachable("down", nil).Retryable())
	assert.True(t, Timeout("slow", nil).Retryable())
	assert.False(t, NotConfigured("no key").Retryable())
	assert.False(t, MalformedResponse("garbage", nil).Retryable())
}
