package handoff

import (
	"sort"
	"time"
)

// StaffStatus is the presence status of an online staff member.
type StaffStatus string

const (
	StaffAvailable StaffStatus = "AVAILABLE"
	StaffBusy      StaffStatus = "BUSY"
	StaffOffline   StaffStatus = "OFFLINE"
)

// Staff is one staff member's live presence and workload.
type Staff struct {
	ID             string
	Online         bool
	Status         StaffStatus
	Workload       int
	MaxWorkload    int
	LastSeenAt     time.Time
	LastActivityAt time.Time
}

// AssignmentTarget reports whether the staff member can take a conversation.
func (s *Staff) AssignmentTarget() bool {
	return s.Online && s.Status == StaffAvailable && s.Workload < s.MaxWorkload
}

func (s *Staff) clone() *Staff {
	cp := *s
	return &cp
}

// Registry tracks staff presence. It is not safe for concurrent use on its
// own; the engine serializes access.
type Registry struct {
	staff map[string]*Staff
	now   func() time.Time
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		staff: make(map[string]*Staff),
		now:   time.Now,
	}
}

// Login creates or refreshes a presence record and marks the staff member
// ONLINE(AVAILABLE). Workload survives a re-login; capacity can be resized.
func (r *Registry) Login(staffID string, maxWorkload int) *Staff {
	if maxWorkload <= 0 {
		maxWorkload = 1
	}
	now := r.now()
	s, ok := r.staff[staffID]
	if !ok {
		s = &Staff{ID: staffID}
		r.staff[staffID] = s
	}
	s.Online = true
	s.Status = StaffAvailable
	s.MaxWorkload = maxWorkload
	s.LastSeenAt = now
	s.LastActivityAt = now
	return s
}

// SetOnline flips the online flag. Going offline keeps the workload:
// in-flight conversations stay assigned, only future assignment stops.
func (r *Registry) SetOnline(staffID string, online bool) (*Staff, error) {
	s, ok := r.staff[staffID]
	if !ok {
		return nil, ErrUnknownStaff
	}
	s.Online = online
	s.LastSeenAt = r.now()
	if online {
		if s.Status == StaffOffline {
			s.Status = StaffAvailable
		}
	} else {
		s.Status = StaffOffline
	}
	return s, nil
}

// SetStatus toggles AVAILABLE/BUSY for an online staff member.
func (r *Registry) SetStatus(staffID string, status StaffStatus) (*Staff, error) {
	s, ok := r.staff[staffID]
	if !ok {
		return nil, ErrUnknownStaff
	}
	if status != StaffAvailable && status != StaffBusy {
		return nil, ErrInvalidTransition
	}
	if !s.Online {
		return nil, ErrInvalidTransition
	}
	s.Status = status
	s.LastSeenAt = r.now()
	return s, nil
}

// Heartbeat refreshes the last-seen timestamp.
func (r *Registry) Heartbeat(staffID string) error {
	s, ok := r.staff[staffID]
	if !ok {
		return ErrUnknownStaff
	}
	s.LastSeenAt = r.now()
	return nil
}

// IncrementWorkload adds one assigned conversation, clamped to MaxWorkload.
func (r *Registry) IncrementWorkload(staffID string) (*Staff, error) {
	s, ok := r.staff[staffID]
	if !ok {
		return nil, ErrUnknownStaff
	}
	if s.Workload < s.MaxWorkload {
		s.Workload++
	}
	s.LastActivityAt = r.now()
	return s, nil
}

// DecrementWorkload releases one assigned conversation. Decrementing at
// zero workload is a no-op.
func (r *Registry) DecrementWorkload(staffID string) (*Staff, error) {
	s, ok := r.staff[staffID]
	if !ok {
		return nil, ErrUnknownStaff
	}
	if s.Workload > 0 {
		s.Workload--
	}
	s.LastActivityAt = r.now()
	return s, nil
}

// Get returns the presence record for the staff id.
func (r *Registry) Get(staffID string) (*Staff, error) {
	s, ok := r.staff[staffID]
	if !ok {
		return nil, ErrUnknownStaff
	}
	return s, nil
}

// AvailableStaff returns assignment targets ordered by ascending workload,
// then ascending last activity, then id: least loaded and longest idle first.
func (r *Registry) AvailableStaff() []*Staff {
	available := make([]*Staff, 0, len(r.staff))
	for _, s := range r.staff {
		if s.AssignmentTarget() {
			available = append(available, s)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		a, b := available[i], available[j]
		if a.Workload != b.Workload {
			return a.Workload < b.Workload
		}
		if !a.LastActivityAt.Equal(b.LastActivityAt) {
			return a.LastActivityAt.Before(b.LastActivityAt)
		}
		return a.ID < b.ID
	})
	return available
}

// All returns a cloned snapshot of every presence record.
func (r *Registry) All() []*Staff {
	all := make([]*Staff, 0, len(r.staff))
	for _, s := range r.staff {
		all = append(all, s.clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
