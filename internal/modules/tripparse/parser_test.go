package tripparse

import (
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, 2 March 2026.
var refNow = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

func newTestParser(opts ...Option) *Parser {
	base := []Option{
		WithClock(func() time.Time { return refNow }),
		WithLocation(time.UTC),
	}
	return New(append(base, opts...)...)
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

// recorder collects events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds(kind EventKind) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestParse_DestinationDatesAndHeadCount(t *testing.T) {
	got := newTestParser().Parse("I'm going to Tokyo from July 10th to July 18th with 2 people")

	require.NotNil(t, got.Destination)
	assert.Equal(t, "Tokyo", *got.Destination)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, date(2026, time.July, 10), *got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, date(2026, time.July, 18), *got.EndDate)
	require.NotNil(t, got.Travelers)
	assert.Equal(t, 2, *got.Travelers)
	assert.Nil(t, got.SpecialRequests)
}

func TestParse_PartyBudgetAccommodation(t *testing.T) {
	rec := &recorder{}
	got := newTestParser(WithObserver(rec)).Parse("party of 4, budget is $2000 per person, prefer a hotel")

	require.NotNil(t, got.Travelers)
	assert.Equal(t, 4, *got.Travelers)
	require.NotNil(t, got.Budget)
	assert.Equal(t, "2000", *got.Budget)
	require.NotNil(t, got.Accommodation)
	assert.Equal(t, AccommodationHotel, *got.Accommodation)
	assert.Nil(t, got.Interests, "party of 4 is already claimed by travelers")
	assert.Nil(t, got.SpecialRequests)

	var overlapped bool
	for _, e := range rec.kinds(EventOverlap) {
		if e.Field == FieldInterests && e.Text == "party" {
			overlapped = true
		}
	}
	assert.True(t, overlapped)
}

func TestParse_NoTravelersPhrase(t *testing.T) {
	transcript := "Destination is London, budget is $2000 per person"
	got := newTestParser().Parse(transcript)

	require.NotNil(t, got.Destination)
	assert.Equal(t, "London", *got.Destination)
	require.NotNil(t, got.Budget)
	assert.Equal(t, "2000", *got.Budget)
	assert.Nil(t, got.Travelers)
	// Two fields is below the fallback count.
	require.NotNil(t, got.SpecialRequests)
	assert.Equal(t, transcript, *got.SpecialRequests)
}

func TestParse_FillerFallsBack(t *testing.T) {
	transcript := "um well you know I was just thinking about things honestly"
	a := newTestParser().Analyze(transcript, Context{})

	assert.Empty(t, a.Fields.Resolved())
	require.NotNil(t, a.Fields.SpecialRequests)
	assert.Equal(t, transcript, *a.Fields.SpecialRequests)
	assert.Contains(t, a.Uncovered, "honestly")
	assert.NotContains(t, a.Uncovered, "just")
}

func TestParse_ShortOrEmptyTranscriptHasNoFallback(t *testing.T) {
	p := newTestParser()
	for _, in := range []string{"", "   ", "hmm okay", "  hello!  "} {
		got := p.Parse(in)
		assert.Empty(t, got.Resolved(), in)
		assert.Nil(t, got.SpecialRequests, in)
	}
}

func TestParseWith_DurationNeedsStartDate(t *testing.T) {
	p := newTestParser()
	start := date(2026, time.July, 1)

	seeded := p.ParseWith("going to Rome for 7 days", Context{StartDate: &start})
	require.NotNil(t, seeded.Destination)
	assert.Equal(t, "Rome", *seeded.Destination)
	require.NotNil(t, seeded.EndDate)
	assert.Equal(t, date(2026, time.July, 7), *seeded.EndDate)
	assert.Nil(t, seeded.StartDate, "seeded start date is context only")

	bare := p.Parse("going to Rome for 7 days")
	assert.Nil(t, bare.EndDate)
}

func TestParse_InterestSet(t *testing.T) {
	got := newTestParser().Parse("interested in food and culture, really into nightlife")
	assert.ElementsMatch(t, []string{InterestFood, InterestCulture, InterestNightlife}, got.Interests)
}

func TestParse_Dates(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		start      *civil.Date
		end        *civil.Date
	}{
		{"relative tomorrow", "we leave tomorrow", ptr(date(2026, time.March, 3)), nil},
		{"next weekday", "starting next friday", ptr(date(2026, time.March, 6)), nil},
		{"this weekend", "a quick getaway this weekend", ptr(date(2026, time.March, 7)), nil},
		{"in weeks", "we want to leave in two weeks", ptr(date(2026, time.March, 16)), nil},
		{"day of month", "from the 3rd of April until the 9th of April", ptr(date(2026, time.April, 3)), ptr(date(2026, time.April, 9))},
		{"numeric", "leaving 7/4 returning 7/12", ptr(date(2026, time.July, 4)), ptr(date(2026, time.July, 12))},
		{"explicit year", "from May 5, 2027 to May 9", ptr(date(2027, time.May, 5)), ptr(date(2027, time.May, 9))},
		{"range", "a trip to Lisbon from July 10-15", ptr(date(2026, time.July, 10)), ptr(date(2026, time.July, 15))},
		{"year boundary", "from December 28th until January 4th", ptr(date(2026, time.December, 28)), ptr(date(2027, time.January, 4))},
		{"nights", "from June 1 for 3 nights", ptr(date(2026, time.June, 1)), ptr(date(2026, time.June, 4))},
		{"weeks", "from June 1 for two weeks", ptr(date(2026, time.June, 1)), ptr(date(2026, time.June, 14))},
		{"invalid day", "from February 30 to March 2", nil, ptr(date(2026, time.March, 2))},
		{"bound only", "we need to be back by August 20", nil, ptr(date(2026, time.August, 20))},
	}
	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.transcript)
			assert.Equal(t, tt.start, got.StartDate)
			assert.Equal(t, tt.end, got.EndDate)
		})
	}
}

func TestParse_RollPastDates(t *testing.T) {
	policy := DefaultPolicy()
	policy.RollPastDates = true
	p := newTestParser(WithPolicy(policy))

	got := p.Parse("from February 10 to February 14")
	require.NotNil(t, got.StartDate)
	assert.Equal(t, date(2027, time.February, 10), *got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, date(2027, time.February, 14), *got.EndDate)

	kept := newTestParser().Parse("from February 10 to February 14")
	require.NotNil(t, kept.StartDate)
	assert.Equal(t, date(2026, time.February, 10), *kept.StartDate)
}

func TestParse_Travelers(t *testing.T) {
	tests := []struct {
		transcript string
		want       *int
	}{
		{"I'm going with 2 friends", ptr(3)},
		{"three adults", ptr(3)},
		{"we are five", ptr(5)},
		{"traveling solo this time", ptr(1)},
		{"me and my wife", ptr(2)},
		{"a family vacation", ptr(4)},
		{"number of travelers is 6", ptr(6)},
		{"just a couple of days away", nil},
		{"my family of 5 is going to Bali", ptr(5)},
		{"family of 3", ptr(3)},
		{"with my wife and 2 kids", ptr(4)},
	}
	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.transcript).Travelers)
		})
	}
}

func TestParse_FamilySizeFromPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.FamilySize = 5
	got := newTestParser(WithPolicy(policy)).Parse("a family vacation")
	require.NotNil(t, got.Travelers)
	assert.Equal(t, 5, *got.Travelers)
}

func TestParse_Budget(t *testing.T) {
	tests := []struct {
		transcript string
		want       *string
	}{
		{"budget is two thousand dollars per person", ptr("2000")},
		{"around 2,500.00 each", ptr("2500")},
		{"$1.5k pp", ptr("1500")},
		{"fifteen hundred per person", ptr("1500")},
		{"€900 per head", ptr("900")},
		{"budget is $3000", nil},
		{"it cost $400", nil},
		{"one each", nil},
		{"we'll need ten each, going to Rome from July 1 for 3 days", nil},
		{"ten dollars each", ptr("10")},
		{"a thousand each", ptr("1000")},
	}
	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.transcript).Budget)
		})
	}
}

func TestParse_LowConfidenceIsReported(t *testing.T) {
	rec := &recorder{}
	got := newTestParser(WithObserver(rec)).Parse("budget is $3000")
	assert.Nil(t, got.Budget)

	low := rec.kinds(EventLowConfidence)
	require.Len(t, low, 1)
	assert.Equal(t, FieldBudget, low[0].Field)
	assert.Less(t, low[0].Confidence, 0.6)
}

func TestParse_AccommodationSynonyms(t *testing.T) {
	tests := map[string]Accommodation{
		"we'd love a vacation rental":             AccommodationAirbnb,
		"staying at an all-inclusive resort":      AccommodationResort,
		"probably a cheap hostel":                 AccommodationHostel,
		"I want to book a nice bed and breakfast": AccommodationHotel,
	}
	p := newTestParser()
	for in, want := range tests {
		got := p.Parse(in)
		require.NotNil(t, got.Accommodation, in)
		assert.Equal(t, want, *got.Accommodation, in)
	}
}

func TestParse_Transportation(t *testing.T) {
	got := newTestParser().Parse("we'll get around by train and rent a car for the coast")
	assert.Equal(t, []string{TransportCarRental, TransportPublic}, got.Transportation)

	none := newTestParser().Parse("I hope the air is clean")
	assert.Nil(t, none.Transportation)
}

func TestParse_DestinationStopsAtDateWords(t *testing.T) {
	p := newTestParser()

	got := p.Parse("going to Rome tomorrow")
	require.NotNil(t, got.Destination)
	assert.Equal(t, "Rome", *got.Destination)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, date(2026, time.March, 3), *got.StartDate)

	got = p.Parse("going to Paris July 10 to July 18")
	require.NotNil(t, got.Destination)
	assert.Equal(t, "Paris", *got.Destination)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, date(2026, time.July, 10), *got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, date(2026, time.July, 18), *got.EndDate)

	got = p.Parse("trip to Tokyo 7/10 to 7/18")
	require.NotNil(t, got.Destination)
	assert.Equal(t, "Tokyo", *got.Destination)

	got = p.Parse("going to Rome today with 2 people")
	require.NotNil(t, got.Destination)
	assert.Equal(t, "Rome", *got.Destination)
	require.NotNil(t, got.Travelers)
	assert.Equal(t, 2, *got.Travelers)
}

func TestParse_DestinationRetriesAfterDeclinedCandidate(t *testing.T) {
	got := newTestParser().Parse("I'm going to fly to Paris")
	require.NotNil(t, got.Destination)
	assert.Equal(t, "Paris", *got.Destination)

	multi := newTestParser().Parse("heading to new york city next month")
	require.NotNil(t, multi.Destination)
	assert.Equal(t, "New York City", *multi.Destination)

	rejected := newTestParser().Parse("going to the beach")
	assert.Nil(t, rejected.Destination)
}

var invariantCorpus = []string{
	"I'm going to Tokyo from July 10th to July 18th with 2 people",
	"party of 4, budget is $2000 per person, prefer a hotel",
	"Destination is London, budget is $2000 per person",
	"going to Rome for 7 days, we love hiking and museums and getting around by train",
	"a family trip to Orlando next weekend, resort please, budget is three thousand each",
	"solo backpacking trip, hostels only, into street food and nightlife, flying in on 8/14",
	"we're 3, thinking about visiting Kyoto from 04/02 to 04/09, shopping and temples",
	"I'd like to go somewhere warm in December with my partner, beaches and relaxing",
}

func TestAnalyze_TokensNeverOverlap(t *testing.T) {
	p := newTestParser()
	for _, in := range invariantCorpus {
		a := p.Analyze(in, Context{})
		for i := range a.Tokens {
			for j := i + 1; j < len(a.Tokens); j++ {
				assert.Falsef(t, a.Tokens[i].Span.Overlaps(a.Tokens[j].Span),
					"%q: %+v overlaps %+v", in, a.Tokens[i], a.Tokens[j])
			}
		}
	}
}

func TestAnalyze_ScalarsComeFromPassingTokens(t *testing.T) {
	p := newTestParser()
	threshold := p.Policy().Threshold
	for _, in := range invariantCorpus {
		a := p.Analyze(in, Context{})
		for _, field := range a.Fields.Resolved() {
			if field.IsList() {
				continue
			}
			best, ok := bestToken(a.Tokens, field)
			require.Truef(t, ok, "%q: %s resolved without a token", in, field)
			assert.GreaterOrEqualf(t, best.Confidence, threshold, "%q: %s", in, field)
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	p := newTestParser()
	for _, in := range invariantCorpus {
		assert.Equal(t, p.Parse(in), p.Parse(in), in)
	}
}

func TestParse_ConcurrentCallers(t *testing.T) {
	p := newTestParser()
	want := make([]TripFields, len(invariantCorpus))
	for i, in := range invariantCorpus {
		want[i] = p.Parse(in)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range invariantCorpus {
				assert.Equal(t, want[i], p.Parse(in))
			}
		}()
	}
	wg.Wait()
}

func TestWithObserver_ReturnsCopy(t *testing.T) {
	base := newTestParser()
	rec := &recorder{}
	traced := base.WithObserver(rec)

	base.Parse("going to Rome for 7 days")
	assert.Empty(t, rec.events)

	traced.Parse("going to Rome for 7 days")
	assert.NotEmpty(t, rec.kinds(EventToken))
	assert.NotEmpty(t, rec.kinds(EventFieldResolved))
	assert.Len(t, rec.kinds(EventFallback), 1)
}

func ptr[T any](v T) *T { return &v }
