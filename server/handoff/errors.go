package handoff

import "errors"

var (
	// ErrDuplicateEntry indicates a live queue entry already exists for the conversation.
	ErrDuplicateEntry = errors.New("conversation already has a live queue entry")
	// ErrNotWaiting indicates the entry is not in the WAITING state.
	ErrNotWaiting = errors.New("queue entry is not waiting")
	// ErrNotInService indicates the entry is not in the IN_SERVICE state.
	ErrNotInService = errors.New("queue entry is not in service")
	// ErrEmpty indicates no WAITING entries exist.
	ErrEmpty = errors.New("no waiting entries")
	// ErrUnknownStaff indicates no presence record exists for the staff id.
	ErrUnknownStaff = errors.New("unknown staff")
	// ErrUnknownConversation indicates no conversation record exists for the id.
	ErrUnknownConversation = errors.New("unknown conversation")
	// ErrInvalidTransition indicates a conversation state transition is not allowed.
	ErrInvalidTransition = errors.New("invalid conversation transition")
)
