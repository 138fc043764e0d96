package handoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances a fixed step per call so enqueue order is observable.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		t:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestQueue() (*Queue, *fakeClock) {
	clock := newFakeClock()
	q := NewQueue()
	q.now = clock.Now
	return q, clock
}

func TestQueue_EnqueueDuplicate(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.Enqueue("c-1", 1)
	require.NoError(t, err)

	_, err = q.Enqueue("c-1", 5)
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	// A resolved entry frees the conversation id for a new one.
	_, err = q.Assign("c-1", "s-1")
	require.NoError(t, err)
	_, err = q.Resolve("c-1")
	require.NoError(t, err)
	_, err = q.Enqueue("c-1", 2)
	require.NoError(t, err)
}

func TestQueue_PeekOrdering(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.Enqueue("c-low-early", 1)
	require.NoError(t, err)
	_, err = q.Enqueue("c-high", 5)
	require.NoError(t, err)
	_, err = q.Enqueue("c-low-late", 1)
	require.NoError(t, err)

	// Highest priority wins.
	entry, err := q.PeekNextCandidate()
	require.NoError(t, err)
	assert.Equal(t, "c-high", entry.ConversationID)

	_, err = q.Assign("c-high", "s-1")
	require.NoError(t, err)

	// FIFO within a priority band.
	entry, err = q.PeekNextCandidate()
	require.NoError(t, err)
	assert.Equal(t, "c-low-early", entry.ConversationID)
}

func TestQueue_PeekDeterministic(t *testing.T) {
	q, _ := newTestQueue()

	for _, id := range []string{"c-3", "c-1", "c-2"} {
		_, err := q.Enqueue(id, 2)
		require.NoError(t, err)
	}

	first, err := q.PeekNextCandidate()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := q.PeekNextCandidate()
		require.NoError(t, err)
		assert.Equal(t, first.ConversationID, again.ConversationID, "peek must not mutate state")
	}
}

func TestQueue_PeekEmpty(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.PeekNextCandidate()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQueue_AssignComputesWaitTime(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.Enqueue("c-1", 1)
	require.NoError(t, err)

	entry, err := q.Assign("c-1", "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", entry.AssignedStaffID)
	assert.Equal(t, EntryInService, entry.State())
	assert.Equal(t, entry.AssignedAt.Sub(entry.EnqueuedAt), entry.WaitTime)
	assert.Greater(t, entry.WaitTime, time.Duration(0))
}

func TestQueue_AssignNotWaiting(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.Assign("c-missing", "s-1")
	assert.ErrorIs(t, err, ErrNotWaiting)

	_, err = q.Enqueue("c-1", 1)
	require.NoError(t, err)
	_, err = q.Assign("c-1", "s-1")
	require.NoError(t, err)

	// Already in service.
	_, err = q.Assign("c-1", "s-2")
	assert.ErrorIs(t, err, ErrNotWaiting)
}

func TestQueue_ResolveLifecycle(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.Enqueue("c-1", 1)
	require.NoError(t, err)

	// Resolving a WAITING entry fails.
	_, err = q.Resolve("c-1")
	assert.ErrorIs(t, err, ErrNotInService)

	_, err = q.Assign("c-1", "s-1")
	require.NoError(t, err)
	entry, err := q.Resolve("c-1")
	require.NoError(t, err)
	assert.Equal(t, EntryResolved, entry.State())

	// Idempotent resolve: the second call fails.
	_, err = q.Resolve("c-1")
	assert.ErrorIs(t, err, ErrNotInService)
}

func TestQueue_AbandonWaitingEntry(t *testing.T) {
	q, _ := newTestQueue()

	_, err := q.Enqueue("c-1", 1)
	require.NoError(t, err)

	entry, err := q.Abandon("c-1")
	require.NoError(t, err)
	assert.Equal(t, EntryResolved, entry.State())
	assert.Empty(t, entry.AssignedStaffID)

	// Abandoned entries never count toward the average wait.
	assert.Equal(t, time.Duration(0), q.AverageWaitTime())
}

func TestQueue_AverageWaitTime(t *testing.T) {
	q, clock := newTestQueue()
	clock.step = time.Minute

	_, err := q.Enqueue("c-1", 1)
	require.NoError(t, err)
	_, err = q.Enqueue("c-2", 1)
	require.NoError(t, err)

	e1, err := q.Assign("c-1", "s-1")
	require.NoError(t, err)
	e2, err := q.Assign("c-2", "s-1")
	require.NoError(t, err)

	want := (e1.WaitTime + e2.WaitTime) / 2
	assert.Equal(t, want, q.AverageWaitTime())

	// Still counted after resolution.
	_, err = q.Resolve("c-1")
	require.NoError(t, err)
	assert.Equal(t, want, q.AverageWaitTime())
}

func TestQueue_Depth(t *testing.T) {
	q, _ := newTestQueue()
	assert.Equal(t, 0, q.Depth())

	_, err := q.Enqueue("c-1", 1)
	require.NoError(t, err)
	_, err = q.Enqueue("c-2", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Depth())

	_, err = q.Assign("c-2", "s-1")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Depth())
}
