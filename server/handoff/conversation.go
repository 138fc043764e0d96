// Package handoff implements the conversation waiting room and the
// staff-workload balancer: a priority queue of conversations that need a
// human, a staff presence registry, and the scheduler that drains one into
// the other. All mutable state is guarded by a single engine mutex.
package handoff

import "time"

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationOpen     ConversationStatus = "OPEN"
	ConversationAssigned ConversationStatus = "ASSIGNED"
	ConversationClosed   ConversationStatus = "CLOSED"
)

// Conversation is the single source of truth for a conversation's lifecycle.
// The queue and scheduler refer to it by id only.
type Conversation struct {
	ID              string
	Status          ConversationStatus
	AssignedStaffID string
	HandoffReason   string

	CreatedAt     time.Time
	LastMessageAt time.Time
	EnqueuedAt    *time.Time
	ClosedAt      *time.Time
	WaitTime      *time.Duration
}

// canTransition reports whether the status change is allowed.
// OPEN -> ASSIGNED -> CLOSED, and OPEN -> CLOSED for conversations that
// never needed a human.
func canTransition(from, to ConversationStatus) bool {
	switch from {
	case ConversationOpen:
		return to == ConversationAssigned || to == ConversationClosed
	case ConversationAssigned:
		return to == ConversationClosed
	default:
		return false
	}
}

// transition applies the status change, stamping ClosedAt on close.
// Disallowed moves return ErrInvalidTransition and leave the record
// untouched.
func (c *Conversation) transition(to ConversationStatus, at time.Time) error {
	if !canTransition(c.Status, to) {
		return ErrInvalidTransition
	}
	c.Status = to
	if to == ConversationClosed {
		closedAt := at
		c.ClosedAt = &closedAt
	}
	return nil
}

// clone returns a copy safe to hand to readers outside the engine lock.
func (c *Conversation) clone() *Conversation {
	cp := *c
	if c.EnqueuedAt != nil {
		t := *c.EnqueuedAt
		cp.EnqueuedAt = &t
	}
	if c.ClosedAt != nil {
		t := *c.ClosedAt
		cp.ClosedAt = &t
	}
	if c.WaitTime != nil {
		d := *c.WaitTime
		cp.WaitTime = &d
	}
	return &cp
}
