// Package postgres implements the RecordStore on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/R3E-Network/wallet-fleet/internal/domain/fleet"
	"github.com/R3E-Network/wallet-fleet/internal/storage"
)

// Store implements storage.RecordStore backed by PostgreSQL. All queries are
// parameterized and every mutation is committed before the call returns.
type Store struct {
	db *sqlx.DB
}

var _ storage.RecordStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type recordRow struct {
	ID        string    `db:"id"`
	Seed      string    `db:"seed"`
	Secret    string    `db:"secret"`
	Address   string    `db:"address"`
	Status    int       `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r recordRow) toDomain() fleet.Record {
	return fleet.Record{
		ID:        r.ID,
		Seed:      r.Seed,
		Secret:    r.Secret,
		Address:   r.Address,
		Status:    fleet.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) Insert(ctx context.Context, seed, secret, address string) (fleet.Record, error) {
	now := time.Now().UTC()
	rec := fleet.Record{
		ID:        uuid.NewString(),
		Seed:      seed,
		Secret:    secret,
		Address:   address,
		Status:    fleet.StatusProvisioned,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fleet_accounts (id, seed, secret, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Seed, rec.Secret, rec.Address, int(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fleet.Record{}, err
	}
	return rec, nil
}

func (s *Store) ListByStatus(ctx context.Context, status fleet.Status) ([]fleet.Record, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, seed, secret, address, status, created_at, updated_at
		FROM fleet_accounts
		WHERE status = $1
		ORDER BY created_at
	`, int(status))
	if err != nil {
		return nil, err
	}

	result := make([]fleet.Record, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (s *Store) UpdateStatus(ctx context.Context, address string, status fleet.Status) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fleet_accounts
		SET status = $2, updated_at = $3
		WHERE address = $1
	`, address, int(status), time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CountByStatus(ctx context.Context, status fleet.Status) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM fleet_accounts WHERE status = $1
	`, int(status))
	if err != nil {
		return 0, err
	}
	return count, nil
}
