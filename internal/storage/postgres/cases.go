// Package postgres persists the customs records in PostgreSQL. Stores are
// pure I/O; upserts use ON CONFLICT so importing the same snapshot twice
// converges. All domain logic stays in the services.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
)

// CaseStore persists cases in PostgreSQL.
type CaseStore struct {
	db *sql.DB
}

func NewCaseStore(db *sql.DB) *CaseStore {
	return &CaseStore{db: db}
}

func (s *CaseStore) Save(ctx context.Context, c domain.Case) error {
	query := `
		INSERT INTO cases (id, vehicle_id, status, risk_score, risk_reason, route,
			origin_country, destination_country, declared_value, actual_value,
			previous_violations, arrived_at, status_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			vehicle_id = EXCLUDED.vehicle_id,
			status = EXCLUDED.status,
			risk_score = EXCLUDED.risk_score,
			risk_reason = EXCLUDED.risk_reason,
			route = EXCLUDED.route,
			origin_country = EXCLUDED.origin_country,
			destination_country = EXCLUDED.destination_country,
			declared_value = EXCLUDED.declared_value,
			actual_value = EXCLUDED.actual_value,
			previous_violations = EXCLUDED.previous_violations,
			arrived_at = EXCLUDED.arrived_at,
			status_updated_at = EXCLUDED.status_updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, nullString(c.VehicleID), string(c.Status), c.RiskScore, c.RiskReason, c.Route,
		c.OriginCountry, c.DestinationCountry, c.DeclaredValue, c.ActualValue,
		c.PreviousViolations, c.ArrivedAt, c.StatusUpdatedAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("save case: %w", err)
	}
	return nil
}

func (s *CaseStore) FindByID(ctx context.Context, id string) (domain.Case, error) {
	query := `
		SELECT id, vehicle_id, status, risk_score, risk_reason, route,
			origin_country, destination_country, declared_value, actual_value,
			previous_violations, arrived_at, status_updated_at, created_at
		FROM cases
		WHERE id = $1
	`
	c, err := scanCase(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Case{}, storage.ErrNotFound
		}
		return domain.Case{}, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

func (s *CaseStore) List(ctx context.Context) ([]domain.Case, error) {
	query := `
		SELECT id, vehicle_id, status, risk_score, risk_reason, route,
			origin_country, destination_country, declared_value, actual_value,
			previous_violations, arrived_at, status_updated_at, created_at
		FROM cases
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("list cases: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (domain.Case, error) {
	var (
		c         domain.Case
		vehicleID sql.NullString
		status    string
	)
	err := row.Scan(&c.ID, &vehicleID, &status, &c.RiskScore, &c.RiskReason, &c.Route,
		&c.OriginCountry, &c.DestinationCountry, &c.DeclaredValue, &c.ActualValue,
		&c.PreviousViolations, &c.ArrivedAt, &c.StatusUpdatedAt, &c.CreatedAt)
	if err != nil {
		return domain.Case{}, err
	}
	c.VehicleID = vehicleID.String
	c.Status = domain.CaseStatus(status)
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CargoStore persists cargo items in PostgreSQL.
type CargoStore struct {
	db *sql.DB
}

func NewCargoStore(db *sql.DB) *CargoStore {
	return &CargoStore{db: db}
}

func (s *CargoStore) Save(ctx context.Context, item domain.CargoItem) error {
	query := `
		INSERT INTO cargo_items (id, case_id, hs_code, description, weight, value, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			hs_code = EXCLUDED.hs_code,
			description = EXCLUDED.description,
			weight = EXCLUDED.weight,
			value = EXCLUDED.value,
			currency = EXCLUDED.currency
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.CaseID, item.HSCode, item.Description, item.Weight, item.Value, item.Currency)
	if err != nil {
		return fmt.Errorf("save cargo item: %w", err)
	}
	return nil
}

func (s *CargoStore) ListByCase(ctx context.Context, caseID string) ([]domain.CargoItem, error) {
	query := `
		SELECT id, case_id, hs_code, description, weight, value, currency
		FROM cargo_items
		WHERE case_id = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list cargo items: %w", err)
	}
	defer rows.Close()

	var out []domain.CargoItem
	for rows.Next() {
		var item domain.CargoItem
		if err := rows.Scan(&item.ID, &item.CaseID, &item.HSCode, &item.Description,
			&item.Weight, &item.Value, &item.Currency); err != nil {
			return nil, fmt.Errorf("list cargo items: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
