package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/shopsense/store"
)

// ApplyAssignment writes the conversation, queue entry, and staff records of
// one assignment inside a single transaction. Either all three land or none.
func (d *DB) ApplyAssignment(ctx context.Context, conversation *store.Conversation, entry *store.HandoffEntry, staff *store.StaffPresence) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversation
		SET status = $1, assigned_staff_id = $2, wait_time_seconds = $3
		WHERE id = $4
	`, conversation.Status, conversation.AssignedStaffID, conversation.WaitTimeSeconds, conversation.ID); err != nil {
		return errors.Wrap(err, "failed to update conversation")
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE handoff_entry
		SET assigned_staff_id = $1, assigned_ts = $2, wait_time_seconds = $3
		WHERE conversation_id = $4 AND resolved_ts IS NULL
	`, entry.AssignedStaffID, entry.AssignedTs, entry.WaitTimeSeconds, entry.ConversationID); err != nil {
		return errors.Wrap(err, "failed to update handoff entry")
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE staff_presence
		SET workload = $1, last_activity_ts = $2
		WHERE staff_id = $3
	`, staff.Workload, staff.LastActivityTs, staff.StaffID); err != nil {
		return errors.Wrap(err, "failed to update staff presence")
	}

	return tx.Commit()
}
