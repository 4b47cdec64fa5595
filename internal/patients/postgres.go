package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory reads patients from PostgreSQL.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory builds a Postgres-backed directory.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	if db == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresDirectory{db: db}
}

var _ Directory = (*PostgresDirectory)(nil)

const patientColumns = `id, name, email, phone, address, dob, gender, image_url`

// GetByID retrieves a patient by id.
func (d *PostgresDirectory) GetByID(ctx context.Context, id string) (*Patient, error) {
	row := d.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)

	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.DOB, &p.Gender, &p.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: load by id: %w", err)
	}
	return &p, nil
}
