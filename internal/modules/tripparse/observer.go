// README: Diagnostics sink for parser tracing; a no-op unless the caller supplies one.
package tripparse

import "github.com/rs/zerolog"

// EventKind classifies a diagnostics event.
type EventKind string

const (
	EventToken         EventKind = "token"
	EventOverlap       EventKind = "overlap"
	EventExtractFailed EventKind = "extract_failed"
	EventLowConfidence EventKind = "low_confidence"
	EventFieldResolved EventKind = "field_resolved"
	EventFallback      EventKind = "fallback"
	EventUncovered     EventKind = "uncovered"
)

// Event is one step of a parse, reported for pattern tuning.
type Event struct {
	Kind       EventKind `json:"kind"`
	Field      Field     `json:"field,omitempty"`
	Pattern    string    `json:"pattern,omitempty"`
	Text       string    `json:"text,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Span       Span      `json:"span"`
	Accepted   bool      `json:"accepted"`
	Words      []string  `json:"words,omitempty"`
}

// Observer receives parse events. Implementations must not retain the Words
// slice past the call unless they copy it.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) Observe(Event) {}

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Observers fans events out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	var out multiObserver
	for _, o := range obs {
		if o == nil {
			continue
		}
		if _, nop := o.(NopObserver); nop {
			continue
		}
		out = append(out, o)
	}
	switch len(out) {
	case 0:
		return NopObserver{}
	case 1:
		return out[0]
	}
	return out
}

// LogObserver writes each event to logger at debug level.
func LogObserver(logger zerolog.Logger) Observer {
	return ObserverFunc(func(e Event) {
		ev := logger.Debug().Str("kind", string(e.Kind))
		if e.Field != "" {
			ev = ev.Str("field", string(e.Field))
		}
		if e.Pattern != "" {
			ev = ev.Str("pattern", e.Pattern)
		}
		if e.Text != "" {
			ev = ev.Str("text", e.Text).Int("start", e.Span.Start).Int("end", e.Span.End)
		}
		if len(e.Words) > 0 {
			ev = ev.Strs("words", e.Words)
		}
		ev.Float64("confidence", e.Confidence).Bool("accepted", e.Accepted).Msg("tripparse")
	})
}
