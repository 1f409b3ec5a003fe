package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripintake/internal/modules/tripparse"
)

// DraftStore persists drafts. Get and Delete return ErrNotFound for unknown ids.
type DraftStore interface {
	Get(ctx context.Context, id string) (Draft, error)
	Save(ctx context.Context, d Draft) error
	Delete(ctx context.Context, id string) error
	// DeleteStale drops collecting drafts last updated before cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store handles trip_drafts persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id string) (Draft, error) {
	var (
		d   Draft
		raw []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, uid, fields, utterances, status, created_at, updated_at
		FROM trip_drafts WHERE id = $1
	`, id).Scan(&d.ID, &d.UID, &raw, &d.Utterances, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("select draft: %w", err)
	}
	var fields tripparse.TripFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Draft{}, fmt.Errorf("decode draft fields: %w", err)
	}
	d.Fields = fields
	d.Missing = missingFields(fields)
	return d, nil
}

// Save inserts the draft or overwrites the stored fields of an existing one.
// The owner and creation time of an existing row never change.
func (s *Store) Save(ctx context.Context, d Draft) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode draft fields: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO trip_drafts (id, uid, fields, utterances, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			fields = EXCLUDED.fields,
			utterances = EXCLUDED.utterances,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, d.ID, d.UID, raw, d.Utterances, string(d.Status), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trip_drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM trip_drafts WHERE status = $1 AND updated_at < $2`, string(StatusCollecting), cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}
