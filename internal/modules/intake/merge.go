package intake

import (
	"sort"

	"tripintake/internal/modules/tripparse"
)

// merge folds one utterance's fields into the draft's. Later scalars win,
// tag lists are unioned, and special requests accumulate one per line.
func merge(prev, next tripparse.TripFields) tripparse.TripFields {
	out := prev
	if next.Destination != nil {
		out.Destination = next.Destination
	}
	if next.StartDate != nil {
		out.StartDate = next.StartDate
	}
	if next.EndDate != nil {
		out.EndDate = next.EndDate
	}
	if next.Travelers != nil {
		out.Travelers = next.Travelers
	}
	if next.Budget != nil {
		out.Budget = next.Budget
	}
	if next.Accommodation != nil {
		out.Accommodation = next.Accommodation
	}
	out.Interests = union(prev.Interests, next.Interests)
	out.Transportation = union(prev.Transportation, next.Transportation)
	if next.SpecialRequests != nil {
		text := *next.SpecialRequests
		if prev.SpecialRequests != nil && *prev.SpecialRequests != "" {
			text = *prev.SpecialRequests + "\n" + text
		}
		out.SpecialRequests = &text
	}
	return out
}

func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
