package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rodzerz/customs-crm/internal/domain"
)

// EventStore persists the append-only case history in PostgreSQL. The seq
// column is a BIGSERIAL, so insertion order survives identical timestamps.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Append(ctx context.Context, event domain.CaseEvent) (domain.CaseEvent, error) {
	var payload []byte
	if event.Payload != nil {
		var err error
		payload, err = json.Marshal(event.Payload)
		if err != nil {
			return domain.CaseEvent{}, fmt.Errorf("marshal event payload: %w", err)
		}
	}

	query := `
		INSERT INTO case_events (id, case_id, event_type, payload, description,
			actor_id, actor_name, actor_ip, actor_user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq
	`
	err := s.db.QueryRowContext(ctx, query,
		event.ID, event.CaseID, event.EventType, payload, event.Description,
		event.Actor.ID, event.Actor.Name, event.Actor.IP, event.Actor.UserAgent,
		event.CreatedAt).Scan(&event.Seq)
	if err != nil {
		return domain.CaseEvent{}, fmt.Errorf("append case event: %w", err)
	}
	return event, nil
}

func (s *EventStore) ListByCase(ctx context.Context, caseID string) ([]domain.CaseEvent, error) {
	query := `
		SELECT id, case_id, event_type, payload, description,
			actor_id, actor_name, actor_ip, actor_user_agent, created_at, seq
		FROM case_events
		WHERE case_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case events: %w", err)
	}
	defer rows.Close()

	var out []domain.CaseEvent
	for rows.Next() {
		var (
			event   domain.CaseEvent
			payload []byte
		)
		if err := rows.Scan(&event.ID, &event.CaseID, &event.EventType, &payload, &event.Description,
			&event.Actor.ID, &event.Actor.Name, &event.Actor.IP, &event.Actor.UserAgent,
			&event.CreatedAt, &event.Seq); err != nil {
			return nil, fmt.Errorf("list case events: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal event payload: %w", err)
			}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
