package quota

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type store interface {
	Use(ctx context.Context, uid, month string, allowance int) error
	Ensure(ctx context.Context, uid, month string, allowance int) error
	Remaining(ctx context.Context, uid, month string, allowance int) (int, error)
}

// Service meters parses against a monthly allowance.
type Service struct {
	store     store
	allowance int
	now       func() time.Time
}

// NewService returns a Service granting allowance parses per month; a
// non-positive allowance means DefaultMonthly.
func NewService(s *Store, allowance int) *Service {
	return newService(s, allowance, time.Now)
}

func newService(s store, allowance int, now func() time.Time) *Service {
	if allowance <= 0 {
		allowance = DefaultMonthly
	}
	return &Service{store: s, allowance: allowance, now: now}
}

func (s *Service) month() string {
	return s.now().UTC().Format(monthKey)
}

// Use deducts one parse from the user's allowance. A missing row is created
// and the deduction retried once.
func (s *Service) Use(ctx context.Context, uid string) error {
	month := s.month()
	err := s.store.Use(ctx, uid, month, s.allowance)
	if !errors.Is(err, ErrExhausted) {
		return err
	}
	if initErr := s.store.Ensure(ctx, uid, month, s.allowance); initErr != nil {
		return initErr
	}
	return s.store.Use(ctx, uid, month, s.allowance)
}

func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	return s.store.Remaining(ctx, uid, s.month(), s.allowance)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
