package intake

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tripintake/internal/metrics"
	"tripintake/internal/modules/diagnostics"
	"tripintake/internal/modules/tripparse"
)

// Publisher ships one parse's recorded events; nil disables diagnostics.
type Publisher interface {
	Publish(ctx context.Context, r *diagnostics.Recorder)
}

// Limiter meters parses per user; nil disables metering.
type Limiter interface {
	Use(ctx context.Context, uid string) error
}

// Service runs the parser on finalized transcripts and keeps per-session drafts.
type Service struct {
	store  DraftStore
	parser *tripparse.Parser
	diag   Publisher
	quota  Limiter
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(store DraftStore, parser *tripparse.Parser, diag Publisher, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		parser: parser,
		diag:   diag,
		log:    log.With().Str("module", "intake").Logger(),
		now:    time.Now,
	}
}

// WithQuota meters every accepted transcript against q.
func (s *Service) WithQuota(q Limiter) *Service {
	s.quota = q
	return s
}

func (s *Service) charge(ctx context.Context, uid string) error {
	if s.quota == nil {
		return nil
	}
	if uid == "" {
		return ErrBadRequest
	}
	return s.quota.Use(ctx, uid)
}

func validateTranscript(text string, final bool) (string, error) {
	if !final {
		return "", ErrInterimTranscript
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxTranscriptRunes {
		return "", ErrBadRequest
	}
	return text, nil
}

// Parse is the stateless path: one transcript in, fields and tokens out.
func (s *Service) Parse(ctx context.Context, cmd ParseCommand) (tripparse.Analysis, error) {
	text, err := validateTranscript(cmd.Transcript, cmd.Final)
	if err != nil {
		return tripparse.Analysis{}, err
	}
	if err := s.charge(ctx, cmd.UID); err != nil {
		return tripparse.Analysis{}, err
	}
	return s.analyze(ctx, "parse", text, tripparse.Context{}), nil
}

// Submit parses one utterance into the session's draft, creating the draft
// on first use. The draft's start date seeds the parse so "for 5 days" in a
// later utterance resolves against it.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	if cmd.UID == "" {
		return SubmitResult{}, ErrBadRequest
	}
	text, err := validateTranscript(cmd.Transcript, cmd.Final)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.now().UTC()
	draft := Draft{ID: cmd.SessionID, UID: cmd.UID, CreatedAt: now}
	if cmd.SessionID == "" {
		draft.ID = uuid.NewString()
	} else {
		existing, err := s.store.Get(ctx, cmd.SessionID)
		switch {
		case err == nil:
			if existing.UID != cmd.UID {
				return SubmitResult{}, ErrForbidden
			}
			draft = existing
		case err != ErrNotFound:
			return SubmitResult{}, err
		}
	}
	if err := s.charge(ctx, cmd.UID); err != nil {
		return SubmitResult{}, err
	}

	analysis := s.analyze(ctx, draft.ID, text, tripparse.Context{StartDate: draft.Fields.StartDate})

	draft.Fields = merge(draft.Fields, analysis.Fields)
	draft.Utterances++
	draft.Missing = missingFields(draft.Fields)
	draft.Status = statusFor(draft.Missing)
	draft.UpdatedAt = now
	if err := s.store.Save(ctx, draft); err != nil {
		return SubmitResult{}, err
	}

	s.log.Debug().
		Str("draft", draft.ID).
		Int("utterances", draft.Utterances).
		Str("status", string(draft.Status)).
		Int("resolved", len(analysis.Fields.Resolved())).
		Msg("utterance merged")
	return SubmitResult{Draft: draft, Parsed: analysis.Fields}, nil
}

func (s *Service) Get(ctx context.Context, id, uid string) (Draft, error) {
	if id == "" || uid == "" {
		return Draft{}, ErrBadRequest
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	if d.UID != uid {
		return Draft{}, ErrForbidden
	}
	return d, nil
}

// Discard drops a draft the user cancelled.
func (s *Service) Discard(ctx context.Context, id, uid string) error {
	if _, err := s.Get(ctx, id, uid); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) analyze(ctx context.Context, source, text string, seed tripparse.Context) tripparse.Analysis {
	parser := s.parser
	var rec *diagnostics.Recorder
	if s.diag != nil {
		rec = diagnostics.NewRecorder(source)
		parser = parser.WithObserver(rec)
	}
	analysis := parser.Analyze(text, seed)
	metrics.ObserveResult(analysis.Fields)
	if rec != nil {
		s.diag.Publish(ctx, rec)
	}
	return analysis
}

// RunExpiry drops drafts that stayed incomplete for longer than ttl, checking
// every interval until ctx is done.
func (s *Service) RunExpiry(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expire(ctx, ttl)
		}
	}
}

func (s *Service) expire(ctx context.Context, ttl time.Duration) int64 {
	n, err := s.store.DeleteStale(ctx, s.now().UTC().Add(-ttl))
	if err != nil {
		s.log.Warn().Err(err).Msg("expire drafts")
		return 0
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Dur("ttl", ttl).Msg("expired stale drafts")
	}
	return n
}
