package chat

import (
	"context"

	"github.com/hrygo/shopsense/server/handoff"
	"github.com/hrygo/shopsense/store"
)

// storePersister adapts the store to the engine's Persister interface.
type storePersister struct {
	store *store.Store
}

var _ handoff.Persister = (*storePersister)(nil)

func (p *storePersister) SaveConversation(ctx context.Context, conv *handoff.Conversation) error {
	_, err := p.store.UpsertConversation(ctx, conversationRecord(conv))
	return err
}

func (p *storePersister) SaveEntry(ctx context.Context, entry *handoff.Entry) error {
	_, err := p.store.UpsertHandoffEntry(ctx, entryRecord(entry))
	return err
}

func (p *storePersister) SaveStaff(ctx context.Context, staff *handoff.Staff) error {
	_, err := p.store.UpsertStaffPresence(ctx, staffRecord(staff))
	return err
}

func (p *storePersister) ApplyAssignment(ctx context.Context, conv *handoff.Conversation, entry *handoff.Entry, staff *handoff.Staff) error {
	return p.store.ApplyAssignment(ctx, conversationRecord(conv), entryRecord(entry), staffRecord(staff))
}

func conversationRecord(conv *handoff.Conversation) *store.Conversation {
	record := &store.Conversation{
		ID:              conv.ID,
		Status:          string(conv.Status),
		AssignedStaffID: conv.AssignedStaffID,
		HandoffReason:   conv.HandoffReason,
		CreatedTs:       conv.CreatedAt.Unix(),
		LastMessageTs:   conv.LastMessageAt.Unix(),
	}
	if conv.EnqueuedAt != nil {
		ts := conv.EnqueuedAt.Unix()
		record.EnqueuedTs = &ts
	}
	if conv.ClosedAt != nil {
		ts := conv.ClosedAt.Unix()
		record.ClosedTs = &ts
	}
	if conv.WaitTime != nil {
		seconds := int64(conv.WaitTime.Seconds())
		record.WaitTimeSeconds = &seconds
	}
	return record
}

func entryRecord(entry *handoff.Entry) *store.HandoffEntry {
	record := &store.HandoffEntry{
		ConversationID:  entry.ConversationID,
		Priority:        entry.Priority,
		EnqueuedTs:      entry.EnqueuedAt.Unix(),
		AssignedStaffID: entry.AssignedStaffID,
		WaitTimeSeconds: int64(entry.WaitTime.Seconds()),
	}
	if entry.AssignedAt != nil {
		ts := entry.AssignedAt.Unix()
		record.AssignedTs = &ts
	}
	if entry.ResolvedAt != nil {
		ts := entry.ResolvedAt.Unix()
		record.ResolvedTs = &ts
	}
	return record
}

func staffRecord(staff *handoff.Staff) *store.StaffPresence {
	return &store.StaffPresence{
		StaffID:        staff.ID,
		Online:         staff.Online,
		Status:         string(staff.Status),
		Workload:       staff.Workload,
		MaxWorkload:    staff.MaxWorkload,
		LastSeenTs:     staff.LastSeenAt.Unix(),
		LastActivityTs: staff.LastActivityAt.Unix(),
	}
}
