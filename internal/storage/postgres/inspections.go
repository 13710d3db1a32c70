package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
)

// InspectionStore persists inspections in PostgreSQL.
type InspectionStore struct {
	db *sql.DB
}

func NewInspectionStore(db *sql.DB) *InspectionStore {
	return &InspectionStore{db: db}
}

func (s *InspectionStore) Save(ctx context.Context, insp domain.Inspection) error {
	query := `
		INSERT INTO inspections (id, case_id, type, status, decision, decision_reason, comment, performed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			decision = EXCLUDED.decision,
			decision_reason = EXCLUDED.decision_reason,
			comment = EXCLUDED.comment,
			performed_at = EXCLUDED.performed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		insp.ID, insp.CaseID, string(insp.Type), string(insp.Status), string(insp.Decision),
		insp.DecisionReason, insp.Comment, insp.PerformedAt, insp.CreatedAt)
	if err != nil {
		return fmt.Errorf("save inspection: %w", err)
	}
	return nil
}

func (s *InspectionStore) FindByID(ctx context.Context, id string) (domain.Inspection, error) {
	query := `
		SELECT id, case_id, type, status, decision, decision_reason, comment, performed_at, created_at
		FROM inspections
		WHERE id = $1
	`
	insp, err := scanInspection(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Inspection{}, storage.ErrNotFound
		}
		return domain.Inspection{}, fmt.Errorf("find inspection: %w", err)
	}
	return insp, nil
}

func (s *InspectionStore) ListByCase(ctx context.Context, caseID string) ([]domain.Inspection, error) {
	query := `
		SELECT id, case_id, type, status, decision, decision_reason, comment, performed_at, created_at
		FROM inspections
		WHERE case_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	var out []domain.Inspection
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("list inspections: %w", err)
		}
		out = append(out, insp)
	}
	return out, rows.Err()
}

func scanInspection(row rowScanner) (domain.Inspection, error) {
	var (
		insp                   domain.Inspection
		typ, status, decision  string
	)
	err := row.Scan(&insp.ID, &insp.CaseID, &typ, &status, &decision,
		&insp.DecisionReason, &insp.Comment, &insp.PerformedAt, &insp.CreatedAt)
	if err != nil {
		return domain.Inspection{}, err
	}
	insp.Type = domain.InspectionType(typ)
	insp.Status = domain.InspectionStatus(status)
	insp.Decision = domain.Decision(decision)
	return insp, nil
}
