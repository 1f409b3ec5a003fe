// README: Trip draft model; one draft accumulates the fields of a multi-utterance session.
package intake

import (
	"errors"
	"time"

	"tripintake/internal/modules/tripparse"
)

var (
	ErrBadRequest        = errors.New("bad request")
	ErrNotFound          = errors.New("draft not found")
	ErrInterimTranscript = errors.New("transcript is not final")
	ErrForbidden         = errors.New("draft belongs to another user")
)

// MaxTranscriptRunes bounds one utterance. Speech capture stops at about a
// minute of audio, well under this.
const MaxTranscriptRunes = 4000

type Status string

const (
	StatusCollecting Status = "collecting"
	StatusReady      Status = "ready"
)

// RequiredFields must all be resolved before a draft is ready for planning.
var RequiredFields = []tripparse.Field{
	tripparse.FieldDestination,
	tripparse.FieldStartDate,
	tripparse.FieldEndDate,
	tripparse.FieldTravelers,
}

type Draft struct {
	ID         string               `json:"id"`
	UID        string               `json:"uid"`
	Fields     tripparse.TripFields `json:"fields"`
	Utterances int                  `json:"utterances"`
	Status     Status               `json:"status"`
	Missing    []tripparse.Field    `json:"missing"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

type SubmitCommand struct {
	// SessionID names the draft; empty starts a new draft with a generated id.
	SessionID  string
	UID        string
	Transcript string
	Final      bool
}

type ParseCommand struct {
	// UID is charged against the parse quota when one is configured.
	UID        string
	Transcript string
	Final      bool
}

type SubmitResult struct {
	Draft Draft `json:"draft"`
	// Parsed holds what this utterance alone contributed.
	Parsed tripparse.TripFields `json:"parsed"`
}

// missingFields lists the required fields f does not hold.
func missingFields(f tripparse.TripFields) []tripparse.Field {
	have := make(map[tripparse.Field]bool)
	for _, field := range f.Resolved() {
		have[field] = true
	}
	out := []tripparse.Field{}
	for _, field := range RequiredFields {
		if !have[field] {
			out = append(out, field)
		}
	}
	return out
}

func statusFor(missing []tripparse.Field) Status {
	if len(missing) == 0 {
		return StatusReady
	}
	return StatusCollecting
}
