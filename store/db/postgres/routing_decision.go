package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/shopsense/store"
)

func (d *DB) CreateRoutingDecision(ctx context.Context, create *store.RoutingDecision) (*store.RoutingDecision, error) {
	if err := d.db.QueryRowContext(ctx, `
		INSERT INTO routing_decision (conversation_id, intent, raw_intent, confidence, handoff, handoff_reason, latency_ms, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, create.ConversationID, create.Intent, create.RawIntent, create.Confidence,
		create.Handoff, create.HandoffReason, create.LatencyMs, create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListRoutingDecisions(ctx context.Context, find *store.FindRoutingDecision) ([]*store.RoutingDecision, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ConversationID != nil {
		args = append(args, *find.ConversationID)
		where = append(where, fmt.Sprintf("conversation_id = $%d", len(args)))
	}
	if find.HandoffOnly {
		where = append(where, "handoff = TRUE")
	}
	if find.CreatedTsAfter != nil {
		args = append(args, *find.CreatedTsAfter)
		where = append(where, fmt.Sprintf("created_ts >= $%d", len(args)))
	}
	if find.CreatedTsBefore != nil {
		args = append(args, *find.CreatedTsBefore)
		where = append(where, fmt.Sprintf("created_ts < $%d", len(args)))
	}

	query := `
		SELECT id, conversation_id, intent, raw_intent, confidence, handoff, handoff_reason, latency_ms, created_ts
		FROM routing_decision
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
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
