package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory reads providers from PostgreSQL.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory builds a Postgres-backed directory.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	if db == nil {
		panic("providers: pgx pool required")
	}
	return &PostgresDirectory{db: db}
}

var _ Directory = (*PostgresDirectory)(nil)

const providerColumns = `id, name, email, speciality, degree, experience, about, address, image_url, fee_cents, available`

// GetByID retrieves a provider by id.
func (d *PostgresDirectory) GetByID(ctx context.Context, id string) (*Provider, error) {
	row := d.db.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("providers: load by id: %w", err)
	}
	return p, nil
}

// List returns all providers.
func (d *PostgresDirectory) List(ctx context.Context) ([]*Provider, error) {
	rows, err := d.db.Query(ctx, `SELECT `+providerColumns+` FROM providers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("providers: list: %w", err)
	}
	defer rows.Close()

	var out []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("providers: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("providers: iterate: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Speciality, &p.Degree,
		&p.Experience, &p.About, &p.Address, &p.ImageURL, &p.FeeCents, &p.Available)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
