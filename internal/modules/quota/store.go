package quota

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles parse_quota persistence.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Use atomically checks the allowance for month and deducts one parse,
// resetting the counter to allowance when the stored month is older.
// Returns ErrExhausted when no row is updated (allowance spent or user absent).
func (s *Store) Use(ctx context.Context, uid, month string, allowance int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE parse_quota SET
			remaining = CASE WHEN month != $1 THEN $2 - 1 ELSE remaining - 1 END,
			month = $1
		WHERE uid = $3 AND (month < $1 OR remaining > 0)
	`, month, allowance, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}

// Ensure inserts a fresh row for uid; an existing row is left alone.
func (s *Store) Ensure(ctx context.Context, uid, month string, allowance int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO parse_quota (uid, remaining, month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, allowance, month)
	return err
}

// Remaining reports the parses left for month without consuming one.
func (s *Store) Remaining(ctx context.Context, uid, month string, allowance int) (int, error) {
	var remaining int
	var stored string
	err := s.db.QueryRow(ctx, `SELECT remaining, month FROM parse_quota WHERE uid = $1`, uid).Scan(&remaining, &stored)
	if err != nil {
		if isNoRows(err) {
			return allowance, nil
		}
		return 0, err
	}
	if stored < month {
		return allowance, nil
	}
	return remaining, nil
}
