package handoff

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AssignmentMade is emitted after a conversation is handed to a staff member.
type AssignmentMade struct {
	ConversationID string
	StaffID        string
	WaitTime       time.Duration
	AssignedAt     time.Time
}

// Persister durably applies engine mutations. Implementations must treat
// ApplyAssignment as one logical transaction: either all three records are
// written or none. A nil Persister keeps state in memory only.
type Persister interface {
	SaveConversation(ctx context.Context, conversation *Conversation) error
	SaveEntry(ctx context.Context, entry *Entry) error
	SaveStaff(ctx context.Context, staff *Staff) error
	ApplyAssignment(ctx context.Context, conversation *Conversation, entry *Entry, staff *Staff) error
}

// Engine couples the handoff queue, the presence registry, and the
// conversation records behind one mutex, so that peek, assign, workload
// increment, and conversation transition happen as an indivisible unit
// relative to any other scheduler run or direct mutation. Classification
// never runs under this lock.
type Engine struct {
	mu            sync.Mutex
	queue         *Queue
	registry      *Registry
	conversations map[string]*Conversation

	persister    Persister
	onAssignment func(AssignmentMade)
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithPersister sets the durable store behind the engine.
func WithPersister(p Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// WithAssignmentListener registers a callback invoked (outside the lock is
// NOT guaranteed; keep it fast) for every assignment made.
func WithAssignmentListener(fn func(AssignmentMade)) Option {
	return func(e *Engine) { e.onAssignment = fn }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// withClock overrides the engine clock, for tests.
func withClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.queue.now = now
		e.registry.now = now
	}
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		queue:         NewQueue(),
		registry:      NewRegistry(),
		conversations: make(map[string]*Conversation),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OpenConversation records a new OPEN conversation, or refreshes the
// last-message timestamp of an existing live one. Returns a snapshot.
func (e *Engine) OpenConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	conv, ok := e.conversations[conversationID]
	if !ok {
		conv = &Conversation{
			ID:            conversationID,
			Status:        ConversationOpen,
			CreatedAt:     now,
			LastMessageAt: now,
		}
		e.conversations[conversationID] = conv
	} else {
		conv.LastMessageAt = now
	}
	if err := e.persistConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv.clone(), nil
}

// Conversation returns a snapshot of the conversation record.
func (e *Engine) Conversation(conversationID string) (*Conversation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	conv, ok := e.conversations[conversationID]
	if !ok {
		return nil, ErrUnknownConversation
	}
	return conv.clone(), nil
}

// EnqueueHandoff places the conversation in the waiting room and runs the
// scheduler. A duplicate enqueue is treated as already-queued success, since
// customers awaiting a human often send repeated messages.
func (e *Engine) EnqueueHandoff(ctx context.Context, conversationID string, priority int, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	conv, ok := e.conversations[conversationID]
	if !ok {
		return ErrUnknownConversation
	}
	if conv.Status == ConversationClosed {
		return ErrInvalidTransition
	}

	entry, err := e.queue.Enqueue(conversationID, priority)
	if err == ErrDuplicateEntry {
		e.logger.Debug("conversation already queued for handoff",
			"conversation_id", conversationID)
		return nil
	}
	if err != nil {
		return err
	}

	enqueuedAt := entry.EnqueuedAt
	conv.EnqueuedAt = &enqueuedAt
	conv.HandoffReason = reason

	if err := e.persistEnqueue(ctx, conv, entry); err != nil {
		// Persistence must not half-apply: take the entry back out.
		delete(e.queue.live, conversationID)
		conv.EnqueuedAt = nil
		conv.HandoffReason = ""
		return err
	}

	e.schedule(ctx)
	return nil
}

// StaffLogin registers the staff member as ONLINE(AVAILABLE) and runs the
// scheduler so waiting conversations are drained immediately.
func (e *Engine) StaffLogin(ctx context.Context, staffID string, maxWorkload int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	staff := e.registry.Login(staffID, maxWorkload)
	if err := e.persistStaff(ctx, staff); err != nil {
		return err
	}
	e.schedule(ctx)
	return nil
}

// StaffLogout marks the staff member OFFLINE. Assigned conversations stay
// assigned; only future assignment stops.
func (e *Engine) StaffLogout(ctx context.Context, staffID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	staff, err := e.registry.SetOnline(staffID, false)
	if err != nil {
		return err
	}
	return e.persistStaff(ctx, staff)
}

// StaffSetStatus toggles AVAILABLE/BUSY and runs the scheduler when the
// staff member became available.
func (e *Engine) StaffSetStatus(ctx context.Context, staffID string, status StaffStatus) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	staff, err := e.registry.SetStatus(staffID, status)
	if err != nil {
		return err
	}
	if err := e.persistStaff(ctx, staff); err != nil {
		return err
	}
	if status == StaffAvailable {
		e.schedule(ctx)
	}
	return nil
}

// Resolve closes a handed-off conversation: the queue entry becomes
// RESOLVED, the staff workload is released, and the scheduler runs again so
// freed capacity is reused immediately. Resolving twice fails with
// ErrNotInService and does not double-decrement.
func (e *Engine) Resolve(ctx context.Context, conversationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.conversations[conversationID]; !ok {
		return ErrUnknownConversation
	}

	entry, err := e.queue.Resolve(conversationID)
	if err != nil {
		return err
	}

	conv := e.conversations[conversationID]
	closedConv := false
	var prevStatus ConversationStatus
	var prevClosedAt *time.Time
	if conv != nil && conv.Status != ConversationClosed {
		prevStatus, prevClosedAt = conv.Status, conv.ClosedAt
		if terr := conv.transition(ConversationClosed, e.now()); terr != nil {
			e.queue.unresolve(entry)
			return terr
		}
		closedConv = true
	}

	staff, err := e.registry.DecrementWorkload(entry.AssignedStaffID)
	if err != nil {
		// Staff record vanished (e.g. restart); the entry is resolved anyway.
		e.logger.Warn("resolve could not release workload",
			"conversation_id", conversationID,
			"staff_id", entry.AssignedStaffID,
			"error", err)
	}

	// Persistence must not half-apply: any failure restores the entry,
	// the conversation, and the workload.
	rollback := func() {
		e.queue.unresolve(entry)
		if closedConv {
			conv.Status = prevStatus
			conv.ClosedAt = prevClosedAt
		}
		if staff != nil {
			if _, ierr := e.registry.IncrementWorkload(staff.ID); ierr != nil {
				e.logger.Error("rollback increment failed", "staff_id", staff.ID, "error", ierr)
			}
		}
	}

	if conv != nil {
		if perr := e.persistConversation(ctx, conv); perr != nil {
			rollback()
			return perr
		}
	}
	if perr := e.persistEntry(ctx, entry); perr != nil {
		rollback()
		return perr
	}
	if staff != nil {
		if perr := e.persistStaff(ctx, staff); perr != nil {
			rollback()
			return perr
		}
	}

	e.schedule(ctx)
	return nil
}

// Abandon resolves a WAITING conversation that will never reach a human and
// closes its record. Used when the customer leaves or the janitor reaps an
// idle conversation.
func (e *Engine) Abandon(ctx context.Context, conversationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.queue.Abandon(conversationID)
	if err != nil {
		return err
	}

	conv := e.conversations[conversationID]
	closedConv := false
	var prevStatus ConversationStatus
	var prevClosedAt *time.Time
	if conv != nil && conv.Status != ConversationClosed {
		prevStatus, prevClosedAt = conv.Status, conv.ClosedAt
		if terr := conv.transition(ConversationClosed, e.now()); terr != nil {
			e.queue.unresolve(entry)
			return terr
		}
		closedConv = true
	}

	rollback := func() {
		e.queue.unresolve(entry)
		if closedConv {
			conv.Status = prevStatus
			conv.ClosedAt = prevClosedAt
		}
	}

	if closedConv {
		if perr := e.persistConversation(ctx, conv); perr != nil {
			rollback()
			return perr
		}
	}
	if perr := e.persistEntry(ctx, entry); perr != nil {
		rollback()
		return perr
	}
	return nil
}

// CloseConversation closes a conversation that has no live queue entry
// (auto-answered conversations the customer is done with).
func (e *Engine) CloseConversation(ctx context.Context, conversationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	conv, ok := e.conversations[conversationID]
	if !ok {
		return ErrUnknownConversation
	}
	if conv.Status == ConversationClosed {
		return nil
	}
	if _, live := e.queue.Live(conversationID); live {
		return ErrInvalidTransition
	}

	prevStatus := conv.Status
	if err := conv.transition(ConversationClosed, e.now()); err != nil {
		return err
	}
	if perr := e.persistConversation(ctx, conv); perr != nil {
		conv.Status = prevStatus
		conv.ClosedAt = nil
		return perr
	}
	return nil
}

// Schedule runs one scheduler pass. Safe to invoke from any trigger at any
// time; a pass with no work available is a no-op.
func (e *Engine) Schedule(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.schedule(ctx)
}

// schedule drains the queue into available staff. Caller must hold e.mu.
// Each iteration applies queue assign, workload increment, and conversation
// transition as one unit; a persistence failure rolls the iteration back and
// stops the drain.
func (e *Engine) schedule(ctx context.Context) {
	for {
		available := e.registry.AvailableStaff()
		if len(available) == 0 {
			return
		}
		staff := available[0]

		entry, err := e.queue.PeekNextCandidate()
		if err != nil {
			return // ErrEmpty ends the drain loop
		}

		conv := e.conversations[entry.ConversationID]
		if conv == nil || conv.Status != ConversationOpen {
			// A queue entry without a live OPEN conversation is stale; drop it.
			e.logger.Warn("dropping stale queue entry",
				"conversation_id", entry.ConversationID)
			if _, aerr := e.queue.Abandon(entry.ConversationID); aerr != nil {
				return
			}
			continue
		}

		if _, err := e.queue.Assign(entry.ConversationID, staff.ID); err != nil {
			e.logger.Error("scheduler assign failed", "conversation_id", entry.ConversationID, "error", err)
			return
		}
		if _, err := e.registry.IncrementWorkload(staff.ID); err != nil {
			e.queue.unassign(entry.ConversationID)
			e.logger.Error("scheduler workload increment failed", "staff_id", staff.ID, "error", err)
			return
		}
		if err := conv.transition(ConversationAssigned, e.now()); err != nil {
			e.queue.unassign(entry.ConversationID)
			if _, derr := e.registry.DecrementWorkload(staff.ID); derr != nil {
				e.logger.Error("rollback decrement failed", "staff_id", staff.ID, "error", derr)
			}
			e.logger.Error("scheduler transition refused", "conversation_id", entry.ConversationID, "error", err)
			return
		}
		conv.AssignedStaffID = staff.ID
		waitTime := entry.WaitTime
		conv.WaitTime = &waitTime

		if e.persister != nil {
			if err := e.persister.ApplyAssignment(ctx, conv.clone(), entry.clone(), staff.clone()); err != nil {
				// Roll the whole iteration back; better unassigned than half-applied.
				e.queue.unassign(entry.ConversationID)
				if _, derr := e.registry.DecrementWorkload(staff.ID); derr != nil {
					e.logger.Error("rollback decrement failed", "staff_id", staff.ID, "error", derr)
				}
				conv.Status = ConversationOpen
				conv.AssignedStaffID = ""
				conv.WaitTime = nil
				e.logger.Error("assignment persistence failed, rolled back",
					"conversation_id", entry.ConversationID,
					"staff_id", staff.ID,
					"error", err)
				return
			}
		}

		e.logger.Info("conversation assigned",
			"conversation_id", entry.ConversationID,
			"staff_id", staff.ID,
			"wait_ms", entry.WaitTime.Milliseconds(),
			"queue_depth", e.queue.Depth())

		if e.onAssignment != nil {
			e.onAssignment(AssignmentMade{
				ConversationID: entry.ConversationID,
				StaffID:        staff.ID,
				WaitTime:       entry.WaitTime,
				AssignedAt:     *entry.AssignedAt,
			})
		}
	}
}

// QueueDepth returns the number of WAITING entries.
func (e *Engine) QueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Depth()
}

// AverageWaitTime returns the mean wait over served entries.
func (e *Engine) AverageWaitTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.AverageWaitTime()
}

// StaffSnapshot returns cloned presence records for dashboards.
func (e *Engine) StaffSnapshot() []*Staff {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.All()
}

// WaitingSnapshot returns the waiting entries in service order.
func (e *Engine) WaitingSnapshot() []*Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Waiting()
}

// IdleConversations returns snapshots of live conversations whose last
// message is older than the cutoff. Used by the janitor.
func (e *Engine) IdleConversations(cutoff time.Time) []*Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()

	idle := make([]*Conversation, 0)
	for _, conv := range e.conversations {
		if conv.Status != ConversationClosed && conv.LastMessageAt.Before(cutoff) {
			idle = append(idle, conv.clone())
		}
	}
	return idle
}

// Restore rehydrates engine state from persisted records on startup. Per the
// safer restart policy, every staff member is forced OFFLINE and unresolved
// IN_SERVICE entries are requeued as WAITING with their original enqueue
// time, so they keep their place in line.
func (e *Engine) Restore(conversations []*Conversation, entries []*Entry, staff []*Staff) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, conv := range conversations {
		c := conv.clone()
		if c.Status == ConversationAssigned {
			c.Status = ConversationOpen
			c.AssignedStaffID = ""
		}
		e.conversations[c.ID] = c
	}
	for _, entry := range entries {
		if entry.State() == EntryResolved {
			e.queue.resolved = append(e.queue.resolved, entry.clone())
			continue
		}
		requeued := &Entry{
			ConversationID: entry.ConversationID,
			Priority:       entry.Priority,
			EnqueuedAt:     entry.EnqueuedAt,
		}
		e.queue.live[requeued.ConversationID] = requeued
	}
	for _, s := range staff {
		record := s.clone()
		record.Online = false
		record.Status = StaffOffline
		record.Workload = 0
		e.registry.staff[record.ID] = record
	}
}

func (e *Engine) persistConversation(ctx context.Context, conv *Conversation) error {
	if e.persister == nil {
		return nil
	}
	return e.persister.SaveConversation(ctx, conv.clone())
}

func (e *Engine) persistEntry(ctx context.Context, entry *Entry) error {
	if e.persister == nil {
		return nil
	}
	return e.persister.SaveEntry(ctx, entry.clone())
}

func (e *Engine) persistStaff(ctx context.Context, staff *Staff) error {
	if e.persister == nil {
		return nil
	}
	return e.persister.SaveStaff(ctx, staff.clone())
}

func (e *Engine) persistEnqueue(ctx context.Context, conv *Conversation, entry *Entry) error {
	if e.persister == nil {
		return nil
	}
	if err := e.persister.SaveConversation(ctx, conv.clone()); err != nil {
		return err
	}
	return e.persister.SaveEntry(ctx, entry.clone())
}
