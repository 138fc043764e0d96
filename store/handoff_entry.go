package store

// HandoffEntry is the persisted queue entry. At most one live (unresolved)
// row exists per conversation id, enforced by a partial unique index.
type HandoffEntry struct {
	ID              int64
	ConversationID  string
	Priority        int
	EnqueuedTs      int64
	AssignedStaffID string
	AssignedTs      *int64
	ResolvedTs      *int64
	WaitTimeSeconds int64
}

// FindHandoffEntry is the filter for listing handoff entries.
type FindHandoffEntry struct {
	ConversationID *string
	// LiveOnly keeps only unresolved entries (WAITING or IN_SERVICE).
	LiveOnly bool
	Limit    *int
}
