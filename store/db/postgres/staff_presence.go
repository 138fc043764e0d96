package postgres

import (
	"context"
	"fmt"

	"github.com/hrygo/shopsense/store"
)

func (d *DB) UpsertStaffPresence(ctx context.Context, upsert *store.StaffPresence) (*store.StaffPresence, error) {
	query := `
		INSERT INTO staff_presence (staff_id, online, status, workload, max_workload, last_seen_ts, last_activity_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (staff_id)
		DO UPDATE SET
			online = EXCLUDED.online,
			status = EXCLUDED.status,
			workload = EXCLUDED.workload,
			max_workload = EXCLUDED.max_workload,
			last_seen_ts = EXCLUDED.last_seen_ts,
			last_activity_ts = EXCLUDED.last_activity_ts
	`
	if _, err := d.db.ExecContext(ctx, query,
		upsert.StaffID, upsert.Online, upsert.Status, upsert.Workload,
		upsert.MaxWorkload, upsert.LastSeenTs, upsert.LastActivityTs,
	); err != nil {
		return nil, err
	}
	return upsert, nil
}

func (d *DB) ListStaffPresence(ctx context.Context, find *store.FindStaffPresence) ([]*store.StaffPresence, error) {
	query := `
		SELECT staff_id, online, status, workload, max_workload, last_seen_ts, last_activity_ts
		FROM staff_presence
		WHERE 1 = 1`
	args := []any{}
	if find.StaffID != nil {
		args = append(args, *find.StaffID)
		query += fmt.Sprintf(" AND staff_id = $%d", len(args))
	}
	if find.OnlineOnly {
		query += " AND online = TRUE"
	}
	query += " ORDER BY staff_id ASC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.StaffPresence{}
	for rows.Next() {
		presence := &store.StaffPresence{}
		if err := rows.Scan(
			&presence.StaffID, &presence.Online, &presence.Status, &presence.Workload,
			&presence.MaxWorkload, &presence.LastSeenTs, &presence.LastActivityTs,
		); err != nil {
			return nil, err
		}
		list = append(list, presence)
	}
	return list, rows.Err()
}
