// README: Pattern registry; the ordered table of field parsers and their phrasings.
package tripparse

import "regexp"

// Shared expression fragments.
var (
	monthExpr = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	dayExpr   = `\d{1,2}(?:st|nd|rd|th)?`
	yearExpr  = `(?:,?\s+(?P<year>\d{4}))?`
	countExpr = `(?:\d{1,3}|` + alt(keysOf(numberWords)) + `)`

	monthDay   = `(?:the\s+)?(?P<month>` + monthExpr + `)\s+(?P<day>` + dayExpr + `)` + yearExpr + `\b`
	dayMonth   = `(?:the\s+)?(?P<day>` + dayExpr + `)\s+(?:of\s+)?(?P<month>` + monthExpr + `)` + yearExpr + `\b`
	numericMD  = `(?P<mnum>\d{1,2})/(?P<dnum>\d{1,2})(?:/(?P<year>\d{4}|\d{2}))?\b`
	startMark  = `\b(?:from|starting(?:\s+on)?|leaving(?:\s+on)?|departing(?:\s+on)?|arriving(?:\s+on)?|beginning(?:\s+on)?|start\s+date\s+(?:is|of))\s+`
	endMark    = `(?:to|until|till|thru|through|returning(?:\s+on)?|return(?:ing)?\s+on|back\s+(?:on|by)|coming\s+back(?:\s+on)?|ending(?:\s+on)?|end\s+date\s+(?:is|of))`
	boundGroup = `(?:\b(?P<bound>` + endMark + `)\s+)?`
	weekdayAlt = `(?P<weekday>monday|tuesday|wednesday|thursday|friday|saturday|sunday)`

	destExpr  = `(?P<dest>[a-z][a-z.'\-]*(?:\s+[a-z][a-z.'\-]*){0,3}?)`
	destTrail = `(?P<trail>\s+(?:from|on|for|in|with|and|next|this|starting|between|during|around|by|to|until|at|leaving|departing|returning|staying|via|because|so|but|or|then|sometime|budget|my|our|we|i|i'm|it|is|was|the|today|tonight|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday|` + monthExpr + `)\b|\s+\d|\s*[,.!?;:]|\s*$)`

	currencySign  = `(?:[$€£]\s*|\b(?:usd|eur|gbp)\s+)`
	currencyExpr  = `(?:` + currencySign + `|\b)`
	numberWord    = alt(append(keysOf(numberWords), keysOf(tensWords)...))
	magnitude     = `(?:hundred|thousand|grand)`
	spelledExpr   = `(?:a|` + numberWord + `)(?:[\s-]+(?:and[\s-]+)?(?:` + numberWord + `|` + magnitude + `))*`
	// magnitudeExpr is a spelled amount naming at least one magnitude word.
	magnitudeExpr = `(?:a|` + numberWord + `)(?:[\s-]+(?:and[\s-]+)?` + numberWord + `)*[\s-]+` + magnitude + `(?:[\s-]+(?:and[\s-]+)?(?:` + numberWord + `|` + magnitude + `))*`
	numericExpr   = `\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?\s*k|\d+(?:\.\d{1,2})?`
	amountExpr    = `(?P<amount>` + numericExpr + `|` + spelledExpr + `)\b`
	unitWord      = `\s*(?:dollars|usd|bucks|euros?|pounds|gbp)`
	unitWords     = `(?:` + unitWord + `)?`
	perMarker     = `\s*(?:per\s+person|per\s+head|a\s+head|a\s+person|each|pp|/\s*person|per\s+travel+er)\b`
	perPerson     = unitWords + perMarker
	budgetMark    = `\bbudget\s+(?:is\s+|of\s+|:\s*)?(?:around\s+|about\s+|roughly\s+|approximately\s+|up\s+to\s+)?`

	accommodationAlt = alt(keysOf(accommodationSynonyms))
	interestAlt      = alt(keysOf(interestKeywords))
	transportAlt     = alt(keysOf(transportKeywords))
	transportBareAlt = alt(keysExcept(transportKeywords, bareTransportExcluded))
	interestMark     = `interested\s+in|interests?\s+(?:are|is|include)|(?:really\s+|mostly\s+)?into|love|loves|enjoy|enjoys|like|likes|want\s+to\s+(?:see|do|try|experience)|looking\s+for|focus\s+on|passionate\s+about|big\s+on|fan\s+of|keen\s+on`
)

func pattern(expr string, confidence float64, extract Extractor, description string) Pattern {
	return Pattern{
		Expr:        regexp.MustCompile(`(?i)` + expr),
		Confidence:  confidence,
		Extract:     extract,
		Description: description,
	}
}

// casedPattern keeps the expression case-sensitive; used where capitalization
// is the only evidence.
func casedPattern(expr string, confidence float64, extract Extractor, description string) Pattern {
	p := pattern("", confidence, extract, description)
	p.Expr = regexp.MustCompile(expr)
	return p
}

// defaultRegistry is compiled once and shared read-only by every Parser.
var defaultRegistry = buildRegistry()

// buildRegistry returns the field parsers in scan order. startDate must come
// before endDate: duration and range phrasings read the resolved start date.
func buildRegistry() []FieldParser {
	return []FieldParser{
		{
			Field: FieldDestination,
			Patterns: []Pattern{
				pattern(`\bdestination\s+(?:is|will\s+be|would\s+be|:)\s*`+destExpr+destTrail,
					0.95, extractDestination, "explicit destination marker"),
				pattern(`(?P<lead>\b(?:going|go|travel(?:l?ing)?|trip|heading|head|headed|fly(?:ing)?|flight|drive|driving|vacation|holiday|getaway|honeymoon|moving|journey|escape)\s+)to\s+(?:visit\s+|see\s+|be\s+in\s+)?`+destExpr+destTrail,
					0.85, extractDestination, "travel verb + to <place>"),
				pattern(`(?P<lead>\b(?:visit(?:ing)?|explor(?:e|ing)|tour(?:ing)?)\s+)`+destExpr+destTrail,
					0.7, extractDestination, "visit/explore <place>"),
				casedPattern(`(?P<lead>\b(?:in|around|at|near)\s+)(?P<dest>[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})\b`,
					0.55, extractDestination, "capitalized place after preposition"),
			},
		},
		{
			Field: FieldStartDate,
			Patterns: []Pattern{
				pattern(startMark+monthDay, 0.9, extractStartDate, "from <month> <day>"),
				pattern(startMark+dayMonth, 0.88, extractStartDate, "from <day> of <month>"),
				pattern(startMark+numericMD, 0.85, extractStartDate, "from M/D"),
				pattern(`\b(?P<rel>(?:the\s+)?day\s+after\s+tomorrow|tomorrow|today|tonight)\b`,
					0.8, extractRelativeDay, "today/tomorrow"),
				pattern(`\b(?P<which>next|this|coming)\s+`+weekdayAlt+`\b`,
					0.8, extractWeekday, "next <weekday>"),
				pattern(`\b(?P<which>this|next|coming)\s+weekend\b`,
					0.7, extractWeekend, "this/next weekend"),
				pattern(`\bin\s+(?:(?:a|an|one)\s+|(?P<count>`+countExpr+`)\s+)(?P<unit>days?|weeks?)\b`,
					0.7, extractInDays, "in N days"),
				pattern(boundGroup+`\b`+monthDay, 0.7, extractStartDate, "<month> <day>"),
				pattern(boundGroup+`\b`+dayMonth, 0.65, extractStartDate, "<day> <month>"),
				pattern(boundGroup+`\b`+numericMD, 0.65, extractStartDate, "M/D"),
			},
		},
		{
			Field: FieldEndDate,
			Patterns: []Pattern{
				pattern(`\b`+endMark+`\s+`+monthDay, 0.85, extractEndDate, "until <month> <day>"),
				pattern(`\b`+endMark+`\s+`+dayMonth, 0.82, extractEndDate, "until <day> of <month>"),
				pattern(`(?:\b`+endMark+`\s+|\s*[-–]\s*)`+numericMD, 0.8, extractEndDate, "until M/D"),
				pattern(`(?P<lead>\b`+monthExpr+`\s+\d{1,2}(?:st|nd|rd|th)?)\s*(?:-|–|to|through|thru|until|till)\s*(?P<day>`+dayExpr+`)\b`,
					0.8, extractRangeEnd, "<month> <day>-<day> range"),
				pattern(`\bfor\s+(?:(?:a|an|one)\s+|(?P<count>`+countExpr+`)\s+)(?P<unit>days?|nights?|weeks?)\b`,
					0.8, extractDuration, "for N days"),
				pattern(`\b(?P<count>`+countExpr+`)[\s-](?P<unit>days?|nights?|weeks?)\s+(?:long\s+)?(?:trip|vacation|holiday|getaway|stay|visit)\b`,
					0.75, extractDuration, "N-day trip"),
			},
		},
		{
			Field: FieldTravelers,
			Patterns: []Pattern{
				pattern(`\b(?:number\s+of\s+(?:travel+ers|people|guests|adults)|travel+ers|guests|headcount|group\s+size)\s*(?:is|are|will\s+be|:|=)\s*(?P<count>`+countExpr+`)\b`,
					0.95, extractTravelerCount, "explicit traveler count"),
				pattern(`\b(?:party|group|family)\s+of\s+(?P<count>`+countExpr+`)\b`,
					0.9, extractTravelerCount, "party/family of N"),
				pattern(`\b(?P<count>`+countExpr+`)\s+(?:people|persons?|travel+ers|adults|guests|pax|passengers|folks|of\s+us)\b`,
					0.85, extractTravelerCount, "N people"),
				pattern(`\b(?:with|bringing|plus|and)\s+(?:my\s+)?(?:(?P<partner>wife|husband|partner|girlfriend|boyfriend|spouse|fianc[eé]e?)\s+and\s+(?:my\s+|our\s+)?)?(?P<count>`+countExpr+`)\s+(?P<others>friends|kids|children|others|colleagues|coworkers|buddies|family\s+members)\b`,
					0.75, extractTravelerCount, "with N friends"),
				pattern(`\b(?:we\s+are|we're|there\s+are|there\s+will\s+be|there'll\s+be|total\s+of)\s+(?P<count>`+countExpr+`)\b`,
					0.75, extractTravelerCount, "we are N"),
				pattern(`\b(?P<solo>solo|alone|by\s+myself|on\s+my\s+own|just\s+me|single\s+travel+er)\b`,
					0.75, extractTravelerGroup, "solo traveler"),
				pattern(`\b(?P<couple>couple|honeymoon|anniversary\s+trip|(?:my|me\s+and\s+my)\s+(?:wife|husband|partner|girlfriend|boyfriend|fianc[eé]e?|spouse))\b(?P<of>\s+of\b)?`,
					0.7, extractTravelerGroup, "couple"),
				pattern(`\b(?P<family>family)\b(?P<of>\s+of\b)?`,
					0.6, extractTravelerGroup, "family (default size)"),
			},
		},
		{
			Field: FieldBudget,
			Patterns: []Pattern{
				pattern(budgetMark+currencyExpr+amountExpr+perPerson,
					0.95, extractBudget, "budget is <amount> per person"),
				pattern(currencySign+amountExpr+perPerson,
					0.85, extractBudget, "<currency><amount> per person"),
				pattern(`\b(?P<amount>`+numericExpr+`|`+magnitudeExpr+`)\b`+perPerson,
					0.85, extractBudget, "<number or magnitude> per person"),
				pattern(`\b`+amountExpr+unitWord+perMarker,
					0.85, extractBudget, "<amount> <unit> per person"),
				pattern(budgetMark+currencyExpr+amountExpr+unitWords,
					0.55, extractBudget, "budget is <amount> (no per-person marker)"),
				pattern(`[$€£]\s*`+amountExpr,
					0.4, extractBudget, "bare currency amount"),
			},
		},
		{
			Field: FieldAccommodation,
			Patterns: []Pattern{
				pattern(`\b(?:prefer(?:ably)?|want|book(?:ing)?|stay(?:ing)?(?:\s+(?:at|in))?|accommodation(?:\s+is)?|lodging(?:\s+is)?|sleep(?:ing)?\s+in)\s+(?:(?:a|an|the|in|at|some|to\s+stay\s+(?:at|in))\s+)*(?:(?:nice|cheap|budget|luxury|small|boutique|good|cozy|local|private)\s+)?(?P<kind>`+accommodationAlt+`)\b`,
					0.9, extractAccommodation, "prefer/stay at <accommodation>"),
				pattern(`\b(?P<kind>`+accommodationAlt+`)\b`,
					0.7, extractAccommodation, "accommodation keyword"),
			},
		},
		{
			Field: FieldInterests,
			Patterns: []Pattern{
				pattern(`(?P<lead>\b(?:`+interestMark+`)\s+(?:[a-z'&-]+\s+){0,4}?)(?P<kw>`+interestAlt+`)\b`,
					0.85, extractInterests, "interested in <keyword>"),
				pattern(`\b(?P<kw>`+interestAlt+`)\b`,
					0.7, extractInterests, "interest keyword"),
			},
		},
		{
			Field: FieldTransportation,
			Patterns: []Pattern{
				pattern(`(?P<lead>\b(?:get(?:ting)?\s+around|travel(?:l?ing)?|go(?:ing)?|come|coming|commut(?:e|ing)|move\s+around|prefer(?:\s+to)?(?:\s+(?:travel|go|get\s+around))?|want\s+to\s+(?:travel|go|get\s+around))\s+)(?:by|via|on|using|with)\s+(?:(?:a|the)\s+)?(?P<kw>`+transportAlt+`)\b`,
					0.9, extractTransport, "get around by <mode>"),
				pattern(`\b(?:by|via)\s+(?P<kw>`+transportAlt+`)\b`,
					0.8, extractTransport, "by <mode>"),
				pattern(`\b(?P<kw>`+transportBareAlt+`)\b`,
					0.7, extractTransport, "transport keyword"),
			},
		},
	}
}
