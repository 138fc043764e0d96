package sqlite

import (
	"context"
	"strings"

	"github.com/hrygo/shopsense/store"
)

func (d *DB) CreateRoutingDecision(ctx context.Context, create *store.RoutingDecision) (*store.RoutingDecision, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO routing_decision (conversation_id, intent, raw_intent, confidence, handoff, handoff_reason, latency_ms, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, create.ConversationID, create.Intent, create.RawIntent, create.Confidence,
		create.Handoff, create.HandoffReason, create.LatencyMs, create.CreatedTs)
	if err != nil {
		return nil, err
	}
	if id, err := result.LastInsertId(); err == nil {
		create.ID = id
	}
	return create, nil
}

func (d *DB) ListRoutingDecisions(ctx context.Context, find *store.FindRoutingDecision) ([]*store.RoutingDecision, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.HandoffOnly {
		where = append(where, "handoff = 1")
	}
	if find.CreatedTsAfter != nil {
		where, args = append(where, "created_ts >= ?"), append(args, *find.CreatedTsAfter)
	}
	if find.CreatedTsBefore != nil {
		where, args = append(where, "created_ts < ?"), append(args, *find.CreatedTsBefore)
	}

	query := `
		SELECT id, conversation_id, intent, raw_intent, confidence, handoff, handoff_reason, latency_ms, created_ts
		FROM routing_decision
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.RoutingDecision{}
	for rows.Next() {
		decision := &store.RoutingDecision{}
		if err := rows.Scan(
			&decision.ID, &decision.ConversationID, &decision.Intent, &decision.RawIntent,
			&decision.Confidence, &decision.Handoff, &decision.HandoffReason, &decision.LatencyMs, &decision.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, decision)
	}
	return list, rows.Err()
}
