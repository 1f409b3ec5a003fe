// README: Parser API; folds the field parsers over a transcript and resolves the result.
package tripparse

import (
	"time"

	"cloud.google.com/go/civil"
)

// Policy holds the tunable acceptance rules.
type Policy struct {
	// Threshold is the minimum pattern confidence a token needs to populate a field.
	Threshold float64
	// MinResolvedFields: fewer resolved fields than this triggers the verbatim fallback.
	MinResolvedFields int
	// MinFallbackLength: transcripts of at most this many runes (trimmed) never fall back.
	MinFallbackLength int
	// FamilySize is the heuristic head count for "family".
	FamilySize int
	// RollPastDates moves a month/day date with no explicit year that already
	// passed into next year.
	RollPastDates bool
}

func DefaultPolicy() Policy {
	return Policy{
		Threshold:         0.6,
		MinResolvedFields: 3,
		MinFallbackLength: 10,
		FamilySize:        defaultFamilyOf,
		RollPastDates:     false,
	}
}

// Parser extracts TripFields from transcripts. A Parser is immutable after
// New and safe for concurrent use.
type Parser struct {
	policy   Policy
	now      func() time.Time
	location *time.Location
	observer Observer
	registry []FieldParser
}

type Option func(*Parser)

func WithPolicy(p Policy) Option {
	return func(parser *Parser) { parser.policy = p }
}

// WithClock overrides the reference clock used for "today" and relative dates.
func WithClock(now func() time.Time) Option {
	return func(parser *Parser) {
		if now != nil {
			parser.now = now
		}
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(parser *Parser) {
		if loc != nil {
			parser.location = loc
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(parser *Parser) { parser.observer = Observers(obs) }
}

func New(opts ...Option) *Parser {
	p := &Parser{
		policy:   DefaultPolicy(),
		now:      time.Now,
		location: time.Local,
		observer: NopObserver{},
		registry: defaultRegistry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithObserver returns a copy of p that also reports to obs.
func (p *Parser) WithObserver(obs Observer) *Parser {
	cp := *p
	cp.observer = Observers(p.observer, obs)
	return &cp
}

func (p *Parser) Policy() Policy {
	return p.policy
}

// Today is the reference date in the parser's location.
func (p *Parser) Today() civil.Date {
	return civil.DateOf(p.now().In(p.location))
}

// Analysis is the full result of one parse, including the tokens behind it.
type Analysis struct {
	Fields    TripFields `json:"fields"`
	Tokens    []Token    `json:"tokens"`
	Uncovered []string   `json:"uncovered,omitempty"`
}

// Parse extracts fields from a finalized transcript. It never fails; an
// unrecognizable transcript yields empty fields plus, when long enough, the
// verbatim text in SpecialRequests.
func (p *Parser) Parse(transcript string) TripFields {
	return p.Analyze(transcript, Context{}).Fields
}

// ParseWith parses with a seeded context, typically a start date resolved by
// an earlier utterance. Zero-valued seed fields take the parser's defaults.
func (p *Parser) ParseWith(transcript string, seed Context) TripFields {
	return p.Analyze(transcript, seed).Fields
}

// Analyze parses transcript and returns the fields with their supporting tokens.
func (p *Parser) Analyze(transcript string, seed Context) Analysis {
	ctx := p.context(seed)
	obs := p.observer

	var (
		tokens  []Token
		claimed []Span
	)
	for _, fp := range p.registry {
		var found []Token
		found, claimed = scanField(fp, transcript, claimed, ctx, obs)
		ctx = propagate(fp.Field, found, ctx, p.policy.Threshold)
		tokens = append(tokens, found...)
	}

	fields := resolve(tokens, p.policy.Threshold, obs)
	applyFallback(&fields, transcript, p.policy, obs)

	uncovered := uncoveredWords(transcript, tokens)
	if len(uncovered) > 0 {
		obs.Observe(Event{Kind: EventUncovered, Words: uncovered})
	}
	return Analysis{Fields: fields, Tokens: tokens, Uncovered: uncovered}
}

func (p *Parser) context(seed Context) Context {
	ctx := seed
	if ctx.Today.IsZero() {
		ctx.Today = p.Today()
	}
	if ctx.FamilySize <= 0 {
		ctx.FamilySize = p.policy.FamilySize
	}
	ctx.RollPastDates = ctx.RollPastDates || p.policy.RollPastDates
	if ctx.StartDate != nil {
		d := *ctx.StartDate
		ctx.StartDate = &d
	}
	return ctx
}
