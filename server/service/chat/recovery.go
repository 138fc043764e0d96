package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/shopsense/server/handoff"
	"github.com/hrygo/shopsense/store"
)

// Recover rehydrates the engine from persisted records after a restart.
// Staff members come back OFFLINE with zero workload, and entries that were
// in service are requeued as WAITING with their original enqueue time, so a
// crash never strands a customer behind a phantom assignment.
func (s *ChatService) Recover(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	conversationRecords, err := s.store.ListConversations(ctx, &store.FindConversation{ExcludeClosed: true})
	if err != nil {
		return errors.Wrap(err, "failed to load conversations")
	}
	entryRecords, err := s.store.ListHandoffEntries(ctx, &store.FindHandoffEntry{LiveOnly: true})
	if err != nil {
		return errors.Wrap(err, "failed to load handoff entries")
	}
	staffRecords, err := s.store.ListStaffPresence(ctx, &store.FindStaffPresence{})
	if err != nil {
		return errors.Wrap(err, "failed to load staff presence")
	}

	conversations := make([]*handoff.Conversation, 0, len(conversationRecords))
	for _, record := range conversationRecords {
		conversations = append(conversations, conversationFromRecord(record))
	}
	entries := make([]*handoff.Entry, 0, len(entryRecords))
	for _, record := range entryRecords {
		entries = append(entries, entryFromRecord(record))
	}
	staff := make([]*handoff.Staff, 0, len(staffRecords))
	for _, record := range staffRecords {
		staff = append(staff, staffFromRecord(record))
	}

	s.engine.Restore(conversations, entries, staff)
	s.logger.Info("engine state recovered",
		"conversations", len(conversations),
		"requeued_entries", len(entries),
		"staff", len(staff))
	return nil
}

func conversationFromRecord(record *store.Conversation) *handoff.Conversation {
	conv := &handoff.Conversation{
		ID:              record.ID,
		Status:          handoff.ConversationStatus(record.Status),
		AssignedStaffID: record.AssignedStaffID,
		HandoffReason:   record.HandoffReason,
		CreatedAt:       time.Unix(record.CreatedTs, 0),
		LastMessageAt:   time.Unix(record.LastMessageTs, 0),
	}
	if record.EnqueuedTs != nil {
		t := time.Unix(*record.EnqueuedTs, 0)
		conv.EnqueuedAt = &t
	}
	if record.ClosedTs != nil {
		t := time.Unix(*record.ClosedTs, 0)
		conv.ClosedAt = &t
	}
	if record.WaitTimeSeconds != nil {
		d := time.Duration(*record.WaitTimeSeconds) * time.Second
		conv.WaitTime = &d
	}
	return conv
}

func entryFromRecord(record *store.HandoffEntry) *handoff.Entry {
	entry := &handoff.Entry{
		ConversationID:  record.ConversationID,
		Priority:        record.Priority,
		EnqueuedAt:      time.Unix(record.EnqueuedTs, 0),
		AssignedStaffID: record.AssignedStaffID,
		WaitTime:        time.Duration(record.WaitTimeSeconds) * time.Second,
	}
	if record.AssignedTs != nil {
		t := time.Unix(*record.AssignedTs, 0)
		entry.AssignedAt = &t
	}
	if record.ResolvedTs != nil {
		t := time.Unix(*record.ResolvedTs, 0)
		entry.ResolvedAt = &t
	}
	return entry
}

func staffFromRecord(record *store.StaffPresence) *handoff.Staff {
	return &handoff.Staff{
		ID:             record.StaffID,
		Online:         record.Online,
		Status:         handoff.StaffStatus(record.Status),
		Workload:       record.Workload,
		MaxWorkload:    record.MaxWorkload,
		LastSeenAt:     time.Unix(record.LastSeenTs, 0),
		LastActivityAt: time.Unix(record.LastActivityTs, 0),
	}
}
