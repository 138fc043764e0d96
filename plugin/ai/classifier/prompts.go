package classifier

import "encoding/json"

// SystemPrompt is the default classification prompt. The JSON schema enforces
// the output format, so the prompt only carries the classification rules.
const SystemPrompt = `You are the intent classifier of an e-commerce customer support assistant.
Classify the customer message into exactly one intent:

order_status: asking about an existing order, delivery, refund state
product_search: looking for a product or product details
shipping_fee: asking about shipping cost or delivery options
promotion: asking about discounts, vouchers, ongoing campaigns
store_info: opening hours, locations, contact, return policy
complaint: dissatisfaction about a product, order, or the service
chitchat: greetings and small talk
human_request: explicitly asking for a human agent

Set need_handoff to true when the customer explicitly asks for a human or the
message cannot be answered autonomously. Set suggest_handoff to true when a
human would likely do better even though an answer is possible. Compose a reply
the assistant can send verbatim, and list any tool lookups required to ground it.`

// classificationJSONSchema defines the strict output schema for classification.
// Using an enum constrains intent values and prevents hallucination.
var classificationJSONSchema = &jsonSchema{
	Type: "object",
	Properties: map[string]*jsonSchema{
		"intent": {
			Type: "string",
			Enum: []string{
				"order_status",
				"product_search",
				"shipping_fee",
				"promotion",
				"store_info",
				"complaint",
				"chitchat",
				"human_request",
			},
			Description: "The classified intent type",
		},
		"confidence": {
			Type:        "number",
			Description: "Confidence score between 0 and 1",
		},
		"reply": {
			Type:        "string",
			Description: "Reply text to send when answering autonomously",
		},
		"need_handoff": {
			Type:        "boolean",
			Description: "True when a human must take over",
		},
		"suggest_handoff": {
			Type:        "boolean",
			Description: "True when offering a human proactively is advisable",
		},
		"tool_requests": {
			Type:        "array",
			Description: "Tool lookups needed to ground the reply",
			Items: &jsonSchema{
				Type: "object",
				Properties: map[string]*jsonSchema{
					"name":      {Type: "string", Description: "Tool name"},
					"arguments": {Type: "object", Description: "Tool arguments"},
				},
				Required: []string{"name"},
			},
		},
		"product_suggestions": {
			Type:        "array",
			Description: "Products to attach to the reply",
			Items: &jsonSchema{
				Type: "object",
				Properties: map[string]*jsonSchema{
					"product_id": {Type: "string"},
					"name":       {Type: "string"},
					"price":      {Type: "number"},
					"reason":     {Type: "string"},
				},
				Required: []string{"product_id", "name"},
			},
		},
	},
	Required:             []string{"intent", "confidence", "need_handoff", "suggest_handoff"},
	AdditionalProperties: false,
}

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
type jsonSchema struct {
	Type                 string                 `json:"type"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Description          string                 `json:"description,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}
