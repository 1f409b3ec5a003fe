package diagnostics

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tripintake/internal/modules/tripparse"
)

var ErrBadRequest = errors.New("bad request")

const maxListed = 500

type sink interface {
	Append(ctx context.Context, source string, at time.Time, events []tripparse.Event) error
	Recent(ctx context.Context, n int64) ([]Entry, error)
	TopUncovered(ctx context.Context, n int64) ([]WordCount, error)
}

// Service publishes recorded parses and serves the tuning queries.
type Service struct {
	store sink
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store *Store, log zerolog.Logger) *Service {
	return newService(store, log)
}

func newService(store sink, log zerolog.Logger) *Service {
	return &Service{store: store, log: log.With().Str("module", "diagnostics").Logger(), now: time.Now}
}

// Publish stores the recorder's events. Failures are logged, never returned:
// diagnostics must not break the parse that produced them.
func (s *Service) Publish(ctx context.Context, r *Recorder) {
	if s == nil || r == nil {
		return
	}
	events := r.Events()
	if err := s.store.Append(ctx, r.Source, s.now(), events); err != nil {
		s.log.Warn().Err(err).Str("source", r.Source).Int("events", len(events)).Msg("publish diagnostics")
	}
}

func (s *Service) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 || n > maxListed {
		return nil, ErrBadRequest
	}
	return s.store.Recent(ctx, int64(n))
}

func (s *Service) TopUncovered(ctx context.Context, n int) ([]WordCount, error) {
	if n <= 0 || n > maxListed {
		return nil, ErrBadRequest
	}
	return s.store.TopUncovered(ctx, int64(n))
}
