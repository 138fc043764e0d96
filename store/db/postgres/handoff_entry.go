package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/shopsense/store"
)

func (d *DB) UpsertHandoffEntry(ctx context.Context, upsert *store.HandoffEntry) (*store.HandoffEntry, error) {
	// Update the live row if one exists; otherwise insert a new one. The
	// partial unique index keeps at most one live row per conversation.
	result, err := d.db.ExecContext(ctx, `
		UPDATE handoff_entry
		SET priority = $1, assigned_staff_id = $2, assigned_ts = $3, resolved_ts = $4, wait_time_seconds = $5
		WHERE conversation_id = $6 AND resolved_ts IS NULL
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

	if err := d.db.QueryRowContext(ctx, `
		INSERT INTO handoff_entry (conversation_id, priority, enqueued_ts, assigned_staff_id, assigned_ts, resolved_ts, wait_time_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, upsert.ConversationID, upsert.Priority, upsert.EnqueuedTs, upsert.AssignedStaffID,
		upsert.AssignedTs, upsert.ResolvedTs, upsert.WaitTimeSeconds,
	).Scan(&upsert.ID); err != nil {
		return nil, err
	}
	return upsert, nil
}

func (d *DB) ListHandoffEntries(ctx context.Context, find *store.FindHandoffEntry) ([]*store.HandoffEntry, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ConversationID != nil {
		args = append(args, *find.ConversationID)
		where = append(where, fmt.Sprintf("conversation_id = $%d", len(args)))
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
		args = append(args, *find.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
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
