// README: Trip-request extraction types (fields, patterns, tokens, context).
package tripparse

import (
	"regexp"

	"cloud.google.com/go/civil"
)

// Field names one output slot of TripFields.
type Field string

const (
	FieldDestination     Field = "destination"
	FieldStartDate       Field = "startDate"
	FieldEndDate         Field = "endDate"
	FieldTravelers       Field = "travelers"
	FieldBudget          Field = "budget"
	FieldAccommodation   Field = "accommodation"
	FieldInterests       Field = "interests"
	FieldTransportation  Field = "transportation"
	FieldSpecialRequests Field = "specialRequests"
)

// IsList reports whether the field collects a set of tags instead of a single value.
func (f Field) IsList() bool {
	return f == FieldInterests || f == FieldTransportation
}

// Accommodation is the normalized lodging preference.
type Accommodation string

const (
	AccommodationHotel  Accommodation = "hotel"
	AccommodationAirbnb Accommodation = "airbnb"
	AccommodationHostel Accommodation = "hostel"
	AccommodationResort Accommodation = "resort"
)

// Interest category tags.
const (
	InterestCulture     = "culture"
	InterestAdventure   = "adventure"
	InterestFood        = "food"
	InterestRelaxation  = "relaxation"
	InterestNature      = "nature"
	InterestShopping    = "shopping"
	InterestNightlife   = "nightlife"
	InterestPhotography = "photography"
)

// Transportation category tags.
const (
	TransportFlights   = "flights"
	TransportCarRental = "car-rental"
	TransportPublic    = "public-transport"
	TransportWalking   = "walking"
)

// TripFields is the structured result of one parse. Nil pointers and nil
// slices mean the field was not resolved.
type TripFields struct {
	Destination     *string        `json:"destination,omitempty"`
	StartDate       *civil.Date    `json:"startDate,omitempty"`
	EndDate         *civil.Date    `json:"endDate,omitempty"`
	Travelers       *int           `json:"travelers,omitempty"`
	Budget          *string        `json:"budget,omitempty"`
	Accommodation   *Accommodation `json:"accommodation,omitempty"`
	Interests       []string       `json:"interests,omitempty"`
	Transportation  []string       `json:"transportation,omitempty"`
	SpecialRequests *string        `json:"specialRequests,omitempty"`
}

// Resolved lists the structured fields that hold a value, in registry order.
// SpecialRequests is not a structured field and is never included.
func (f TripFields) Resolved() []Field {
	var out []Field
	if f.Destination != nil {
		out = append(out, FieldDestination)
	}
	if f.StartDate != nil {
		out = append(out, FieldStartDate)
	}
	if f.EndDate != nil {
		out = append(out, FieldEndDate)
	}
	if f.Travelers != nil {
		out = append(out, FieldTravelers)
	}
	if f.Budget != nil {
		out = append(out, FieldBudget)
	}
	if f.Accommodation != nil {
		out = append(out, FieldAccommodation)
	}
	if len(f.Interests) > 0 {
		out = append(out, FieldInterests)
	}
	if len(f.Transportation) > 0 {
		out = append(out, FieldTransportation)
	}
	return out
}

// Span is a half-open byte range [Start, End) into the transcript.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Token is a candidate field value backed by one pattern occurrence.
type Token struct {
	Field       Field   `json:"field"`
	Value       any     `json:"value"`
	Confidence  float64 `json:"confidence"`
	Span        Span    `json:"span"`
	Text        string  `json:"text"`
	Description string  `json:"pattern"`
}

// Context is the accumulator threaded through a scan. Today, FamilySize and
// RollPastDates are fixed for the whole call; StartDate is written once the
// startDate field parser has run so endDate extractors can read it.
type Context struct {
	Today         civil.Date
	FamilySize    int
	RollPastDates bool
	StartDate     *civil.Date
}

// withStartDate returns a copy of c with StartDate set.
func (c Context) withStartDate(d civil.Date) Context {
	c.StartDate = &d
	return c
}

// Extractor converts one occurrence into a typed value. ok=false discards the
// candidate without claiming its span.
type Extractor func(m Match, c Context) (value any, ok bool)

// Pattern is one recognizable phrasing for a field.
//
// Expr may contain a named group "lead" (context that must precede the
// evidence) and a named group "trail" (context that must follow it). Neither
// is part of the claimed span.
type Pattern struct {
	Expr        *regexp.Regexp
	Confidence  float64
	Extract     Extractor
	Description string
}

// FieldParser groups the patterns for one field, most specific first.
type FieldParser struct {
	Field    Field
	Patterns []Pattern
}
