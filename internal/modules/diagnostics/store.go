package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tripintake/internal/modules/tripparse"
)

const (
	streamKey    = "tripintake:diagnostics"
	uncoveredKey = "tripintake:uncovered"
)

// Store keeps diagnostics in a capped Redis stream plus a sorted set of
// uncovered-word counts.
type Store struct {
	redis  *redis.Client
	maxLen int64
}

func NewStore(redis *redis.Client, maxLen int64) *Store {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Store{redis: redis, maxLen: maxLen}
}

// Append writes events in one pipeline.
func (s *Store) Append(ctx context.Context, source string, at time.Time, events []tripparse.Event) error {
	if len(events) == 0 {
		return nil
	}
	pipe := s.redis.Pipeline()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			MaxLen: s.maxLen,
			Approx: true,
			Values: map[string]any{
				"source": source,
				"at":     at.UTC().Format(time.RFC3339Nano),
				"kind":   string(e.Kind),
				"event":  payload,
			},
		})
		if e.Kind == tripparse.EventUncovered {
			for _, w := range e.Words {
				pipe.ZIncrBy(ctx, uncoveredKey, 1, w)
			}
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append diagnostics: %w", err)
	}
	return nil
}

// Recent returns the newest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int64) ([]Entry, error) {
	msgs, err := s.redis.XRevRangeN(ctx, streamKey, "+", "-", n).Result()
	if err != nil {
		return nil, fmt.Errorf("read diagnostics: %w", err)
	}
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		entry, err := decodeEntry(m)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// TopUncovered returns the n most frequent uncovered words.
func (s *Store) TopUncovered(ctx context.Context, n int64) ([]WordCount, error) {
	if n <= 0 {
		return []WordCount{}, nil
	}
	zs, err := s.redis.ZRevRangeWithScores(ctx, uncoveredKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read uncovered words: %w", err)
	}
	out := make([]WordCount, 0, len(zs))
	for _, z := range zs {
		word, _ := z.Member.(string)
		out = append(out, WordCount{Word: word, Count: int64(z.Score)})
	}
	return out, nil
}

func decodeEntry(m redis.XMessage) (Entry, error) {
	entry := Entry{ID: m.ID}
	entry.Source, _ = m.Values["source"].(string)
	if at, ok := m.Values["at"].(string); ok {
		entry.At, _ = time.Parse(time.RFC3339Nano, at)
	} else if ms, _, found := strings.Cut(m.ID, "-"); found {
		if n, err := strconv.ParseInt(ms, 10, 64); err == nil {
			entry.At = time.UnixMilli(n).UTC()
		}
	}
	payload, _ := m.Values["event"].(string)
	if err := json.Unmarshal([]byte(payload), &entry.Event); err != nil {
		return Entry{}, fmt.Errorf("decode diagnostics entry %s: %w", m.ID, err)
	}
	return entry, nil
}
