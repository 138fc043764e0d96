package sqlite

import (
	"context"
	"strings"

	"github.com/hrygo/shopsense/store"
)

func (d *DB) UpsertConversation(ctx context.Context, upsert *store.Conversation) (*store.Conversation, error) {
	query := `
		INSERT INTO conversation (id, status, assigned_staff_id, handoff_reason, created_ts, last_message_ts, enqueued_ts, closed_ts, wait_time_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			assigned_staff_id = EXCLUDED.assigned_staff_id,
			handoff_reason = EXCLUDED.handoff_reason,
			last_message_ts = EXCLUDED.last_message_ts,
			enqueued_ts = EXCLUDED.enqueued_ts,
			closed_ts = EXCLUDED.closed_ts,
			wait_time_seconds = EXCLUDED.wait_time_seconds
	`
	if _, err := d.db.ExecContext(ctx, query,
		upsert.ID, upsert.Status, upsert.AssignedStaffID, upsert.HandoffReason,
		upsert.CreatedTs, upsert.LastMessageTs, upsert.EnqueuedTs, upsert.ClosedTs, upsert.WaitTimeSeconds,
	); err != nil {
		return nil, err
	}
	return upsert, nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}
	if find.ExcludeClosed {
		where = append(where, "status != 'CLOSED'")
	}

	query := `
		SELECT id, status, assigned_staff_id, handoff_reason, created_ts, last_message_ts, enqueued_ts, closed_ts, wait_time_seconds
		FROM conversation
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.Conversation{}
	for rows.Next() {
		conversation := &store.Conversation{}
		if err := rows.Scan(
			&conversation.ID, &conversation.Status, &conversation.AssignedStaffID, &conversation.HandoffReason,
			&conversation.CreatedTs, &conversation.LastMessageTs, &conversation.EnqueuedTs, &conversation.ClosedTs, &conversation.WaitTimeSeconds,
		); err != nil {
			return nil, err
		}
		list = append(list, conversation)
	}
	return list, rows.Err()
}
