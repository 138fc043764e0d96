package store

// RoutingDecision is the append-only audit record of one routing invocation.
// Rows are never updated or deleted; they feed analytics only.
type RoutingDecision struct {
	ID             int64
	ConversationID string
	Intent         string
	RawIntent      string
	Confidence     float64
	Handoff        bool
	HandoffReason  string
	LatencyMs      int64
	CreatedTs      int64
}

// FindRoutingDecision is the filter for listing routing decisions.
type FindRoutingDecision struct {
	ConversationID  *string
	HandoffOnly     bool
	CreatedTsAfter  *int64
	CreatedTsBefore *int64
	Limit           *int
}
