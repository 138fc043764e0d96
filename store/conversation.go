package store

// Conversation is the persisted conversation record.
type Conversation struct {
	ID              string
	Status          string // OPEN | ASSIGNED | CLOSED
	AssignedStaffID string
	HandoffReason   string
	CreatedTs       int64
	LastMessageTs   int64
	EnqueuedTs      *int64
	ClosedTs        *int64
	WaitTimeSeconds *int64
}

// FindConversation is the filter for listing conversations.
type FindConversation struct {
	ID     *string
	Status *string
	// ExcludeClosed drops CLOSED conversations from the result.
	ExcludeClosed bool
	Limit         *int
}
