// README: Token resolution; the winning token per field, plus the verbatim fallback.
package tripparse

import (
	"sort"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

// bestToken returns the highest-confidence token for field; the earliest
// token wins ties.
func bestToken(tokens []Token, field Field) (Token, bool) {
	var best Token
	found := false
	for _, t := range tokens {
		if t.Field != field {
			continue
		}
		if !found || t.Confidence > best.Confidence {
			best, found = t, true
		}
	}
	return best, found
}

// propagate folds the result of one field parser into the context. Only the
// start date is read by later extractors.
func propagate(field Field, tokens []Token, ctx Context, threshold float64) Context {
	if field != FieldStartDate {
		return ctx
	}
	best, ok := bestToken(tokens, field)
	if !ok || best.Confidence < threshold {
		return ctx
	}
	if d, ok := best.Value.(civil.Date); ok {
		return ctx.withStartDate(d)
	}
	return ctx
}

// resolve turns accepted tokens into TripFields. Scalars keep their best
// token at or above threshold; lists union every passing token.
func resolve(tokens []Token, threshold float64, obs Observer) TripFields {
	var out TripFields
	for _, fp := range defaultFieldOrder {
		if fp.IsList() {
			tags := unionTags(tokens, fp, threshold)
			if len(tags) == 0 {
				continue
			}
			switch fp {
			case FieldInterests:
				out.Interests = tags
			case FieldTransportation:
				out.Transportation = tags
			}
			obs.Observe(Event{Kind: EventFieldResolved, Field: fp, Text: strings.Join(tags, ","), Accepted: true})
			continue
		}

		best, ok := bestToken(tokens, fp)
		if !ok {
			continue
		}
		if best.Confidence < threshold {
			obs.Observe(Event{Kind: EventLowConfidence, Field: fp, Pattern: best.Description, Text: best.Text, Confidence: best.Confidence, Span: best.Span})
			continue
		}
		if !assign(&out, fp, best.Value) {
			continue
		}
		obs.Observe(Event{Kind: EventFieldResolved, Field: fp, Pattern: best.Description, Text: best.Text, Confidence: best.Confidence, Span: best.Span, Accepted: true})
	}
	return out
}

func assign(out *TripFields, field Field, value any) bool {
	switch field {
	case FieldDestination:
		if v, ok := value.(string); ok {
			out.Destination = &v
			return true
		}
	case FieldStartDate:
		if v, ok := value.(civil.Date); ok {
			out.StartDate = &v
			return true
		}
	case FieldEndDate:
		if v, ok := value.(civil.Date); ok {
			out.EndDate = &v
			return true
		}
	case FieldTravelers:
		if v, ok := value.(int); ok {
			out.Travelers = &v
			return true
		}
	case FieldBudget:
		if v, ok := value.(string); ok {
			out.Budget = &v
			return true
		}
	case FieldAccommodation:
		if v, ok := value.(Accommodation); ok {
			out.Accommodation = &v
			return true
		}
	}
	return false
}

func unionTags(tokens []Token, field Field, threshold float64) []string {
	set := make(map[string]bool)
	for _, t := range tokens {
		if t.Field != field || t.Confidence < threshold {
			continue
		}
		tags, _ := t.Value.([]string)
		for _, tag := range tags {
			set[tag] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// applyFallback copies the transcript into SpecialRequests when too few
// structured fields resolved.
func applyFallback(fields *TripFields, transcript string, policy Policy, obs Observer) {
	resolved := len(fields.Resolved())
	if resolved >= policy.MinResolvedFields {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(transcript)) <= policy.MinFallbackLength {
		return
	}
	verbatim := transcript
	fields.SpecialRequests = &verbatim
	obs.Observe(Event{Kind: EventFallback, Field: FieldSpecialRequests, Text: transcript, Accepted: true})
}

var defaultFieldOrder = []Field{
	FieldDestination,
	FieldStartDate,
	FieldEndDate,
	FieldTravelers,
	FieldBudget,
	FieldAccommodation,
	FieldInterests,
	FieldTransportation,
}
