// Package caseevent is the append-only case history. Events are the audit
// trail: they are never updated or deleted, and every meaningful case mutation
// leaves exactly one behind.
package caseevent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

// Service appends and reads case events. The acting principal is an explicit
// parameter on every append; this package never inspects ambient auth state.
type Service struct {
	store storage.EventStore
}

func NewService(store storage.EventStore) *Service {
	return &Service{store: store}
}

// Log appends one event to the case history and returns the stored record
// with its assigned sequence number.
func (s *Service) Log(ctx context.Context, actor domain.Actor, caseID, eventType string, payload map[string]any, description string) (domain.CaseEvent, error) {
	event := domain.CaseEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		EventType:   eventType,
		Payload:     payload,
		Description: description,
		Actor:       actor,
		CreatedAt:   requestcontext.Now(ctx),
	}
	stored, err := s.store.Append(ctx, event)
	if err != nil {
		return domain.CaseEvent{}, fmt.Errorf("append case event: %w", err)
	}
	return stored, nil
}

// LogStatusChange appends the status_changed event that accompanies every
// case transition.
func (s *Service) LogStatusChange(ctx context.Context, actor domain.Actor, caseID string, oldStatus, newStatus domain.CaseStatus, reason string) (domain.CaseEvent, error) {
	return s.Log(ctx, actor, caseID, domain.EventStatusChanged, map[string]any{
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	}, reason)
}

// History returns the full event sequence for a case, newest first. The
// history is fetched in full per call; it is not a restartable stream.
func (s *Service) History(ctx context.Context, caseID string) ([]domain.CaseEvent, error) {
	return s.store.ListByCase(ctx, caseID)
}
