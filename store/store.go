// Package store provides durable persistence for conversations, handoff
// queue entries, staff presence, and routing-decision audit records.
package store

import (
	"context"
	"log/slog"

	"github.com/hrygo/shopsense/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate applies the schema if not yet initialized.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}
	slog.Info("initializing database schema", "driver", s.profile.Driver)
	return s.driver.Migrate(ctx)
}

func (s *Store) UpsertConversation(ctx context.Context, upsert *Conversation) (*Conversation, error) {
	return s.driver.UpsertConversation(ctx, upsert)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

func (s *Store) UpsertHandoffEntry(ctx context.Context, upsert *HandoffEntry) (*HandoffEntry, error) {
	return s.driver.UpsertHandoffEntry(ctx, upsert)
}

func (s *Store) ListHandoffEntries(ctx context.Context, find *FindHandoffEntry) ([]*HandoffEntry, error) {
	return s.driver.ListHandoffEntries(ctx, find)
}

func (s *Store) UpsertStaffPresence(ctx context.Context, upsert *StaffPresence) (*StaffPresence, error) {
	return s.driver.UpsertStaffPresence(ctx, upsert)
}

func (s *Store) ListStaffPresence(ctx context.Context, find *FindStaffPresence) ([]*StaffPresence, error) {
	return s.driver.ListStaffPresence(ctx, find)
}

func (s *Store) CreateRoutingDecision(ctx context.Context, create *RoutingDecision) (*RoutingDecision, error) {
	return s.driver.CreateRoutingDecision(ctx, create)
}

func (s *Store) ListRoutingDecisions(ctx context.Context, find *FindRoutingDecision) ([]*RoutingDecision, error) {
	return s.driver.ListRoutingDecisions(ctx, find)
}

// ApplyAssignment writes the conversation, queue entry, and staff records of
// one assignment in a single transaction.
func (s *Store) ApplyAssignment(ctx context.Context, conversation *Conversation, entry *HandoffEntry, staff *StaffPresence) error {
	return s.driver.ApplyAssignment(ctx, conversation, entry, staff)
}
