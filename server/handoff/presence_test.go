package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*Registry, *fakeClock) {
	clock := newFakeClock()
	r := NewRegistry()
	r.now = clock.Now
	return r, clock
}

func TestRegistry_UnknownStaff(t *testing.T) {
	r, _ := newTestRegistry()

	_, err := r.SetOnline("ghost", true)
	assert.ErrorIs(t, err, ErrUnknownStaff)
	_, err = r.SetStatus("ghost", StaffBusy)
	assert.ErrorIs(t, err, ErrUnknownStaff)
	_, err = r.IncrementWorkload("ghost")
	assert.ErrorIs(t, err, ErrUnknownStaff)
	_, err = r.DecrementWorkload("ghost")
	assert.ErrorIs(t, err, ErrUnknownStaff)
	assert.ErrorIs(t, r.Heartbeat("ghost"), ErrUnknownStaff)
}

func TestRegistry_LoginLogout(t *testing.T) {
	r, _ := newTestRegistry()

	s := r.Login("s-1", 3)
	assert.True(t, s.Online)
	assert.Equal(t, StaffAvailable, s.Status)
	assert.Equal(t, 3, s.MaxWorkload)

	_, err := r.IncrementWorkload("s-1")
	require.NoError(t, err)

	// Going offline keeps the workload.
	s, err = r.SetOnline("s-1", false)
	require.NoError(t, err)
	assert.False(t, s.Online)
	assert.Equal(t, StaffOffline, s.Status)
	assert.Equal(t, 1, s.Workload)

	// Re-login restores availability without clearing workload.
	s = r.Login("s-1", 3)
	assert.True(t, s.Online)
	assert.Equal(t, 1, s.Workload)
}

func TestRegistry_BusyPausesAssignment(t *testing.T) {
	r, _ := newTestRegistry()
	r.Login("s-1", 2)

	_, err := r.SetStatus("s-1", StaffBusy)
	require.NoError(t, err)
	assert.Empty(t, r.AvailableStaff())

	_, err = r.SetStatus("s-1", StaffAvailable)
	require.NoError(t, err)
	assert.Len(t, r.AvailableStaff(), 1)
}

func TestRegistry_SetStatusWhileOffline(t *testing.T) {
	r, _ := newTestRegistry()
	r.Login("s-1", 2)
	_, err := r.SetOnline("s-1", false)
	require.NoError(t, err)

	_, err = r.SetStatus("s-1", StaffAvailable)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRegistry_WorkloadBounds(t *testing.T) {
	r, _ := newTestRegistry()
	r.Login("s-1", 2)

	// Decrement below zero is a no-op.
	s, err := r.DecrementWorkload("s-1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Workload)

	// Increment clamps at max.
	for i := 0; i < 5; i++ {
		s, err = r.IncrementWorkload("s-1")
		require.NoError(t, err)
		assert.LessOrEqual(t, s.Workload, s.MaxWorkload)
		assert.GreaterOrEqual(t, s.Workload, 0)
	}
	assert.Equal(t, 2, s.Workload)
}

// Scenario D: a staff member at capacity is excluded from availableStaff.
func TestRegistry_FullStaffExcluded(t *testing.T) {
	r, _ := newTestRegistry()
	r.Login("s-1", 2)

	for i := 0; i < 2; i++ {
		_, err := r.IncrementWorkload("s-1")
		require.NoError(t, err)
	}
	assert.Empty(t, r.AvailableStaff())

	_, err := r.DecrementWorkload("s-1")
	require.NoError(t, err)
	assert.Len(t, r.AvailableStaff(), 1)
}

func TestRegistry_AvailableStaffOrdering(t *testing.T) {
	r, _ := newTestRegistry()

	// s-busy logs in first (earliest activity) but carries more load.
	r.Login("s-busy", 5)
	r.Login("s-idle", 5)
	r.Login("s-late", 5)

	_, err := r.IncrementWorkload("s-busy")
	require.NoError(t, err)
	// s-late has the most recent activity among the zero-workload pair.
	_, err = r.IncrementWorkload("s-late")
	require.NoError(t, err)
	_, err = r.DecrementWorkload("s-late")
	require.NoError(t, err)

	available := r.AvailableStaff()
	require.Len(t, available, 3)
	// Least loaded first, then longest idle.
	assert.Equal(t, "s-idle", available[0].ID)
	assert.Equal(t, "s-late", available[1].ID)
	assert.Equal(t, "s-busy", available[2].ID)
}
