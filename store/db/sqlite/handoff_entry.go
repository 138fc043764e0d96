package sqlite

import (
	"context"
	"strings"

	"github.com/hrygo/shopsense/store"
)

func (d *DB) UpsertHandoffEntry(ctx context.Context, upsert *store.HandoffEntry) (*store.HandoffEntry, error) {
	// Update the live row if one exists; otherwise insert a new one. The
	// partial unique index keeps at most one live row per conversation.
	result, err := d.db.ExecContext(ctx, `
		UPDATE handoff_entry
		SET priority = ?, assigned_staff_id = ?, assigned_ts = ?, resolved_ts = ?, wait_time_seconds = ?
		WHERE conversation_id = ? AND resolved_ts IS NULL
	`, upsert.Priority, upsert.AssignedStaffID, upsert.AssignedTs, upsert.ResolvedTs, upsert.WaitTimeSeconds, upsert.ConversationID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		return upsert, nil
	}

	insert, err := d.db.ExecContext(ctx, `
		INSERT INTO handoff_entry (conversation_id, priority, enqueued_ts, assigned_staff_id, assigned_ts, resolved_ts, wait_time_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, upsert.ConversationID, upsert.Priority, upsert.EnqueuedTs, upsert.AssignedStaffID, upsert.AssignedTs, upsert.ResolvedTs, upsert.WaitTimeSeconds)
	if err != nil {
		return nil, err
	}
	if id, err := insert.LastInsertId(); err == nil {
		upsert.ID = id
	}
	return upsert, nil
}

func (d *DB) ListHandoffEntries(ctx context.Context, find *store.FindHandoffEntry) ([]*store.HandoffEntry, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.LiveOnly {
		where = append(where, "resolved_ts IS NULL")
	}

	query := `
		SELECT id, conversation_id, priority, enqueued_ts, assigned_staff_id, assigned_ts, resolved_ts, wait_time_seconds
		FROM handoff_entry
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY priority DESC, enqueued_ts ASC`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.HandoffEntry{}
	for rows.Next() {
		entry := &store.HandoffEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.ConversationID, &entry.Priority, &entry.EnqueuedTs,
			&entry.AssignedStaffID, &entry.AssignedTs, &entry.ResolvedTs, &entry.WaitTimeSeconds,
		); err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}
