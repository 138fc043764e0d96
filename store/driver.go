package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// Conversation model related methods.
	UpsertConversation(ctx context.Context, upsert *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)

	// HandoffEntry model related methods.
	UpsertHandoffEntry(ctx context.Context, upsert *HandoffEntry) (*HandoffEntry, error)
	ListHandoffEntries(ctx context.Context, find *FindHandoffEntry) ([]*HandoffEntry, error)

	// StaffPresence model related methods.
	UpsertStaffPresence(ctx context.Context, upsert *StaffPresence) (*StaffPresence, error)
	ListStaffPresence(ctx context.Context, find *FindStaffPresence) ([]*StaffPresence, error)

	// RoutingDecision model related methods. Decisions are append-only.
	CreateRoutingDecision(ctx context.Context, create *RoutingDecision) (*RoutingDecision, error)
	ListRoutingDecisions(ctx context.Context, find *FindRoutingDecision) ([]*RoutingDecision, error)

	// ApplyAssignment writes one assignment's three records transactionally.
	ApplyAssignment(ctx context.Context, conversation *Conversation, entry *HandoffEntry, staff *StaffPresence) error
}
