package handoff

import (
	"sort"
	"time"
)

// EntryState is the lifecycle state of a queue entry.
type EntryState string

const (
	EntryWaiting   EntryState = "WAITING"
	EntryInService EntryState = "IN_SERVICE"
	EntryResolved  EntryState = "RESOLVED"
)

// Entry is one conversation's place in the waiting room. At most one live
// (non-resolved) entry exists per conversation id.
type Entry struct {
	ConversationID  string
	Priority        int
	EnqueuedAt      time.Time
	AssignedStaffID string
	AssignedAt      *time.Time
	ResolvedAt      *time.Time
	WaitTime        time.Duration
}

// State derives the entry state from its timestamps.
func (e *Entry) State() EntryState {
	switch {
	case e.ResolvedAt != nil:
		return EntryResolved
	case e.AssignedAt != nil:
		return EntryInService
	default:
		return EntryWaiting
	}
}

func (e *Entry) clone() *Entry {
	cp := *e
	if e.AssignedAt != nil {
		t := *e.AssignedAt
		cp.AssignedAt = &t
	}
	if e.ResolvedAt != nil {
		t := *e.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

// Queue is the ordered waiting room. It is not safe for concurrent use on
// its own; the engine serializes access.
type Queue struct {
	live     map[string]*Entry // conversation id -> live entry
	resolved []*Entry
	now      func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		live: make(map[string]*Entry),
		now:  time.Now,
	}
}

// Enqueue inserts a WAITING entry. Returns ErrDuplicateEntry if a live entry
// already exists for the conversation.
func (q *Queue) Enqueue(conversationID string, priority int) (*Entry, error) {
	if _, ok := q.live[conversationID]; ok {
		return nil, ErrDuplicateEntry
	}
	entry := &Entry{
		ConversationID: conversationID,
		Priority:       priority,
		EnqueuedAt:     q.now(),
	}
	q.live[conversationID] = entry
	return entry, nil
}

// PeekNextCandidate returns the WAITING entry with the highest priority,
// ties broken by earliest enqueue time, then by conversation id so the
// selection is fully deterministic for a given snapshot. Returns ErrEmpty
// when nothing is waiting. The queue is not mutated.
func (q *Queue) PeekNextCandidate() (*Entry, error) {
	var best *Entry
	for _, entry := range q.live {
		if entry.State() != EntryWaiting {
			continue
		}
		if best == nil || lessUrgent(best, entry) {
			best = entry
		}
	}
	if best == nil {
		return nil, ErrEmpty
	}
	return best, nil
}

// lessUrgent reports whether b should be served before a.
func lessUrgent(a, b *Entry) bool {
	if a.Priority != b.Priority {
		return b.Priority > a.Priority
	}
	if !a.EnqueuedAt.Equal(b.EnqueuedAt) {
		return b.EnqueuedAt.Before(a.EnqueuedAt)
	}
	return b.ConversationID < a.ConversationID
}

// Assign transitions WAITING -> IN_SERVICE and computes the wait time.
func (q *Queue) Assign(conversationID, staffID string) (*Entry, error) {
	entry, ok := q.live[conversationID]
	if !ok || entry.State() != EntryWaiting {
		return nil, ErrNotWaiting
	}
	assignedAt := q.now()
	entry.AssignedStaffID = staffID
	entry.AssignedAt = &assignedAt
	entry.WaitTime = assignedAt.Sub(entry.EnqueuedAt)
	return entry, nil
}

// unassign reverts an Assign that could not be persisted.
func (q *Queue) unassign(conversationID string) {
	if entry, ok := q.live[conversationID]; ok {
		entry.AssignedStaffID = ""
		entry.AssignedAt = nil
		entry.WaitTime = 0
	}
}

// Resolve transitions IN_SERVICE -> RESOLVED.
func (q *Queue) Resolve(conversationID string) (*Entry, error) {
	entry, ok := q.live[conversationID]
	if !ok || entry.State() != EntryInService {
		return nil, ErrNotInService
	}
	resolvedAt := q.now()
	entry.ResolvedAt = &resolvedAt
	delete(q.live, conversationID)
	q.resolved = append(q.resolved, entry)
	return entry, nil
}

// unresolve reverts a Resolve or Abandon that could not be persisted.
func (q *Queue) unresolve(entry *Entry) {
	entry.ResolvedAt = nil
	if n := len(q.resolved); n > 0 && q.resolved[n-1] == entry {
		q.resolved = q.resolved[:n-1]
	}
	q.live[entry.ConversationID] = entry
}

// Abandon resolves a WAITING entry that never reached a human, e.g. when the
// customer leaves or the janitor closes an idle conversation.
func (q *Queue) Abandon(conversationID string) (*Entry, error) {
	entry, ok := q.live[conversationID]
	if !ok || entry.State() != EntryWaiting {
		return nil, ErrNotWaiting
	}
	resolvedAt := q.now()
	entry.ResolvedAt = &resolvedAt
	delete(q.live, conversationID)
	q.resolved = append(q.resolved, entry)
	return entry, nil
}

// Live returns the live entry for the conversation, if any.
func (q *Queue) Live(conversationID string) (*Entry, bool) {
	entry, ok := q.live[conversationID]
	return entry, ok
}

// Depth returns the number of WAITING entries.
func (q *Queue) Depth() int {
	depth := 0
	for _, entry := range q.live {
		if entry.State() == EntryWaiting {
			depth++
		}
	}
	return depth
}

// AverageWaitTime returns the mean wait over all entries whose wait is known,
// i.e. assigned or resolved-after-assignment entries. Abandoned entries are
// excluded since they never received service.
func (q *Queue) AverageWaitTime() time.Duration {
	var total time.Duration
	var count int
	for _, entry := range q.live {
		if entry.State() == EntryInService {
			total += entry.WaitTime
			count++
		}
	}
	for _, entry := range q.resolved {
		if entry.AssignedAt != nil {
			total += entry.WaitTime
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / time.Duration(count)
}

// Waiting returns the WAITING entries in service order, cloned for readers.
func (q *Queue) Waiting() []*Entry {
	waiting := make([]*Entry, 0, len(q.live))
	for _, entry := range q.live {
		if entry.State() == EntryWaiting {
			waiting = append(waiting, entry.clone())
		}
	}
	sort.Slice(waiting, func(i, j int) bool {
		return lessUrgent(waiting[j], waiting[i])
	})
	return waiting
}
