// Package classifier wraps the outbound generative-AI endpoint and turns raw
// customer text into a structured classification result consumed by the
// routing policy.
package classifier

import "strings"

// Intent represents the type of customer intent.
type Intent string

const (
	IntentOrderStatus   Intent = "order_status"
	IntentProductSearch Intent = "product_search"
	IntentShippingFee   Intent = "shipping_fee"
	IntentPromotion     Intent = "promotion"
	IntentStoreInfo     Intent = "store_info"
	IntentComplaint     Intent = "complaint"
	IntentChitchat      Intent = "chitchat"
	IntentHumanRequest  Intent = "human_request"
	IntentUnknown       Intent = "unknown"
)

// knownIntents is the closed set the routing policy understands.
var knownIntents = map[string]Intent{
	"order_status":   IntentOrderStatus,
	"product_search": IntentProductSearch,
	"shipping_fee":   IntentShippingFee,
	"promotion":      IntentPromotion,
	"store_info":     IntentStoreInfo,
	"complaint":      IntentComplaint,
	"chitchat":       IntentChitchat,
	"human_request":  IntentHumanRequest,
}

// ParseIntent maps a model-produced intent string onto the closed intent set.
// Unrecognized values map to IntentUnknown; the raw string is preserved on the
// ClassificationResult so an unexpected model output never crashes routing.
func ParseIntent(s string) Intent {
	if intent, ok := knownIntents[strings.ToLower(strings.TrimSpace(s))]; ok {
		return intent
	}
	return IntentUnknown
}

// ToolRequest is a named tool invocation requested by the model.
type ToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ProductSuggestion is a product the model proposes attaching to the reply.
type ProductSuggestion struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// ClassificationResult is the structured output of one classification call.
// It is created once per call and never mutated.
type ClassificationResult struct {
	Intent             Intent
	RawIntent          string
	Confidence         float64
	ReplyText          string
	SuggestHandoff     bool
	NeedHandoff        bool
	ToolRequests       []ToolRequest
	ProductSuggestions []ProductSuggestion
}
