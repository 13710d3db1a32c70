package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
)

// VehicleStore persists vehicles in PostgreSQL.
type VehicleStore struct {
	db *sql.DB
}

func NewVehicleStore(db *sql.DB) *VehicleStore {
	return &VehicleStore{db: db}
}

func (s *VehicleStore) Save(ctx context.Context, v domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, plate_no, country, make, model, vin)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			plate_no = EXCLUDED.plate_no,
			country = EXCLUDED.country,
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			vin = EXCLUDED.vin
	`
	if _, err := s.db.ExecContext(ctx, query, v.ID, v.PlateNo, v.Country, v.Make, v.Model, v.VIN); err != nil {
		return fmt.Errorf("save vehicle: %w", err)
	}
	return nil
}

func (s *VehicleStore) FindByID(ctx context.Context, id string) (domain.Vehicle, error) {
	query := `SELECT id, plate_no, country, make, model, vin FROM vehicles WHERE id = $1`
	var v domain.Vehicle
	err := s.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.PlateNo, &v.Country, &v.Make, &v.Model, &v.VIN)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Vehicle{}, storage.ErrNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("find vehicle: %w", err)
	}
	return v, nil
}

// PartyStore persists parties and their case links in PostgreSQL.
type PartyStore struct {
	db *sql.DB
}

func NewPartyStore(db *sql.DB) *PartyStore {
	return &PartyStore{db: db}
}

func (s *PartyStore) Save(ctx context.Context, p domain.Party) error {
	query := `
		INSERT INTO parties (id, name, type, country, registration_no)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			country = EXCLUDED.country,
			registration_no = EXCLUDED.registration_no
	`
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Type, p.Country, p.RegistrationNo); err != nil {
		return fmt.Errorf("save party: %w", err)
	}
	return nil
}

func (s *PartyStore) FindByID(ctx context.Context, id string) (domain.Party, error) {
	query := `SELECT id, name, type, country, registration_no FROM parties WHERE id = $1`
	var p domain.Party
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Type, &p.Country, &p.RegistrationNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Party{}, storage.ErrNotFound
		}
		return domain.Party{}, fmt.Errorf("find party: %w", err)
	}
	return p, nil
}

func (s *PartyStore) AttachToCase(ctx context.Context, link domain.CaseParty) error {
	query := `
		INSERT INTO case_parties (case_id, party_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (case_id, party_id) DO UPDATE SET role = EXCLUDED.role
	`
	if _, err := s.db.ExecContext(ctx, query, link.CaseID, link.PartyID, string(link.Role)); err != nil {
		return fmt.Errorf("attach party to case: %w", err)
	}
	return nil
}

func (s *PartyStore) ListByCase(ctx context.Context, caseID string) ([]domain.CaseParty, error) {
	query := `SELECT case_id, party_id, role FROM case_parties WHERE case_id = $1 ORDER BY party_id`
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case parties: %w", err)
	}
	defer rows.Close()

	var out []domain.CaseParty
	for rows.Next() {
		var (
			link domain.CaseParty
			role string
		)
		if err := rows.Scan(&link.CaseID, &link.PartyID, &role); err != nil {
			return nil, fmt.Errorf("list case parties: %w", err)
		}
		link.Role = domain.PartyRole(role)
		out = append(out, link)
	}
	return out, rows.Err()
}

// DocumentStore persists document metadata in PostgreSQL.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Save(ctx context.Context, d domain.Document) error {
	query := `
		INSERT INTO documents (id, case_id, type, file_path, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			file_path = EXCLUDED.file_path,
			uploaded_at = EXCLUDED.uploaded_at
	`
	if _, err := s.db.ExecContext(ctx, query, d.ID, d.CaseID, d.Type, d.FilePath, d.UploadedAt); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *DocumentStore) ListByCase(ctx context.Context, caseID string) ([]domain.Document, error) {
	query := `SELECT id, case_id, type, file_path, uploaded_at FROM documents WHERE case_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Type, &d.FilePath, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
