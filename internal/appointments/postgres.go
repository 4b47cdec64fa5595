package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgQuerier is the slice of pgxpool.Pool the ledger uses; pgxmock satisfies
// it in tests.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresLedger persists appointments to PostgreSQL. Snapshots are stored as
// JSONB so booking history is self-contained.
type PostgresLedger struct {
	db pgQuerier
}

// NewPostgresLedger builds a Postgres-backed ledger.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresLedger{db: db}
}

// NewPostgresLedgerWithQuerier allows injecting a mock connection for tests.
func NewPostgresLedgerWithQuerier(db pgQuerier) *PostgresLedger {
	return &PostgresLedger{db: db}
}

var _ Ledger = (*PostgresLedger)(nil)

const appointmentColumns = `id, user_id, provider_id, user_data, provider_data, amount_cents, slot_date, slot_time, created_at, cancelled, paid`

// Create persists a new appointment from the draft.
func (l *PostgresLedger) Create(ctx context.Context, draft Draft) (*Appointment, error) {
	appt := &Appointment{
		ID:           uuid.New().String(),
		UserID:       draft.UserID,
		ProviderID:   draft.ProviderID,
		UserData:     draft.UserData,
		ProviderData: draft.ProviderData,
		AmountCents:  draft.AmountCents,
		SlotDate:     draft.SlotDate,
		SlotTime:     draft.SlotTime,
		CreatedAt:    time.Now().UTC(),
	}

	userJSON, err := json.Marshal(appt.UserData)
	if err != nil {
		return nil, fmt.Errorf("appointments: marshal user snapshot: %w", err)
	}
	providerJSON, err := json.Marshal(appt.ProviderData)
	if err != nil {
		return nil, fmt.Errorf("appointments: marshal provider snapshot: %w", err)
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO appointments (
			id, user_id, provider_id, user_data, provider_data,
			amount_cents, slot_date, slot_time, created_at, cancelled, paid
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,FALSE,FALSE)
	`, appt.ID, appt.UserID, appt.ProviderID, userJSON, providerJSON,
		appt.AmountCents, appt.SlotDate, appt.SlotTime, appt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return appt, nil
}

// Get retrieves an appointment by id.
func (l *PostgresLedger) Get(ctx context.Context, id string) (*Appointment, error) {
	row := l.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: load by id: %w", err)
	}
	return appt, nil
}

// ListForUser returns all appointments for a user, cancelled ones included.
func (l *PostgresLedger) ListForUser(ctx context.Context, userID string) ([]*Appointment, error) {
	rows, err := l.db.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for user: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate: %w", err)
	}
	return out, nil
}

// MarkCancelled flags the appointment cancelled. Re-marking is a no-op.
func (l *PostgresLedger) MarkCancelled(ctx context.Context, id string) error {
	tag, err := l.db.Exec(ctx, `UPDATE appointments SET cancelled = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// MarkPaid flags the appointment paid. Re-marking is a no-op.
func (l *PostgresLedger) MarkPaid(ctx context.Context, id string) error {
	tag, err := l.db.Exec(ctx, `UPDATE appointments SET paid = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var (
		appt         Appointment
		userJSON     []byte
		providerJSON []byte
	)
	err := row.Scan(&appt.ID, &appt.UserID, &appt.ProviderID, &userJSON, &providerJSON,
		&appt.AmountCents, &appt.SlotDate, &appt.SlotTime, &appt.CreatedAt, &appt.Cancelled, &appt.Paid)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(userJSON, &appt.UserData); err != nil {
		return nil, fmt.Errorf("decode user snapshot: %w", err)
	}
	if err := json.Unmarshal(providerJSON, &appt.ProviderData); err != nil {
		return nil, fmt.Errorf("decode provider snapshot: %w", err)
	}
	return &appt, nil
}
