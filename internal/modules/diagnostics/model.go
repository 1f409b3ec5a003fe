// README: Parser diagnostics; buffers parse events and ships them to Redis for pattern tuning.
package diagnostics

import (
	"sync"
	"time"

	"tripintake/internal/modules/tripparse"
)

// Entry is one stored diagnostics event.
type Entry struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	At     time.Time       `json:"at"`
	Event  tripparse.Event `json:"event"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// Recorder collects the events of one parse. It implements tripparse.Observer.
type Recorder struct {
	Source string

	mu     sync.Mutex
	events []tripparse.Event
}

func NewRecorder(source string) *Recorder {
	return &Recorder{Source: source}
}

func (r *Recorder) Observe(e tripparse.Event) {
	if len(e.Words) > 0 {
		e.Words = append([]string(nil), e.Words...)
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the buffered events.
func (r *Recorder) Events() []tripparse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tripparse.Event(nil), r.events...)
}
