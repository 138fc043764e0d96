package store

// StaffPresence is the persisted presence record for one staff member.
type StaffPresence struct {
	StaffID        string
	Online         bool
	Status         string // AVAILABLE | BUSY | OFFLINE
	Workload       int
	MaxWorkload    int
	LastSeenTs     int64
	LastActivityTs int64
}

// FindStaffPresence is the filter for listing presence records.
type FindStaffPresence struct {
	StaffID    *string
	OnlineOnly bool
}
