// README: Value extractors; each turns one occurrence into a typed value or reports ok=false.
package tripparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// extractDestination trims and title-cases the captured place phrase.
func extractDestination(m Match, _ Context) (any, bool) {
	raw := strings.Trim(m.Group("dest"), " \t,.;:!?'-")
	phrase := normalizeKeyword(raw)
	for _, article := range []string{"the ", "a ", "an "} {
		phrase = strings.TrimPrefix(phrase, article)
	}
	if phrase == "" || placeRejects[phrase] {
		return nil, false
	}
	words := strings.Fields(phrase)
	if placeRejects[words[0]] {
		return nil, false
	}
	for _, w := range words {
		if isCalendarWord(w) {
			return nil, false
		}
	}
	if isKeyword(phrase) {
		return nil, false
	}
	// Casers are stateful; one per call keeps Parse safe for concurrent use.
	return cases.Title(language.English).String(phrase), true
}

func isKeyword(phrase string) bool {
	if _, ok := interestKeywords[phrase]; ok {
		return true
	}
	if _, ok := transportKeywords[phrase]; ok {
		return true
	}
	_, ok := accommodationSynonyms[phrase]
	return ok
}

func isCalendarWord(w string) bool {
	if _, ok := monthOf(w); ok {
		return true
	}
	if _, ok := weekdays[w]; ok {
		return true
	}
	switch w {
	case "today", "tonight", "tomorrow", "next", "this", "weekend", "week", "month", "year":
		return true
	}
	return false
}

// monthOf resolves a full or abbreviated month name.
func monthOf(s string) (time.Month, bool) {
	w := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
	if len(w) < 3 {
		return 0, false
	}
	m, ok := monthsByPrefix[w[:3]]
	if !ok {
		return 0, false
	}
	if !strings.HasPrefix(strings.ToLower(m.String()), w) {
		return 0, false
	}
	return m, true
}

var ordinalSuffix = regexp.MustCompile(`(?i)(st|nd|rd|th)$`)

func parseDay(s string) (int, bool) {
	n, err := strconv.Atoi(ordinalSuffix.ReplaceAllString(strings.TrimSpace(s), ""))
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

func parseYear(s string, fallback int) (int, bool) {
	if s == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if len(s) == 2 {
		n += 2000
	}
	return n, true
}

// parseCount reads digits or a number word.
func parseCount(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := numberWords[s]
	return n, ok
}

// calendarDate builds the date named by the month/day/year or mnum/dnum/year
// groups of m. explicitYear reports whether the year came from the text.
func calendarDate(m Match, c Context) (d civil.Date, explicitYear bool, ok bool) {
	var month time.Month
	var day int
	if name := m.Group("month"); name != "" {
		if month, ok = monthOf(name); !ok {
			return civil.Date{}, false, false
		}
		if day, ok = parseDay(m.Group("day")); !ok {
			return civil.Date{}, false, false
		}
	} else {
		mn, err := strconv.Atoi(m.Group("mnum"))
		if err != nil || mn < 1 || mn > 12 {
			return civil.Date{}, false, false
		}
		month = time.Month(mn)
		if day, ok = parseDay(m.Group("dnum")); !ok {
			return civil.Date{}, false, false
		}
	}
	year, ok := parseYear(m.Group("year"), c.Today.Year)
	if !ok {
		return civil.Date{}, false, false
	}
	d = civil.Date{Year: year, Month: month, Day: day}
	if !d.IsValid() {
		return civil.Date{}, false, false
	}
	return d, m.Group("year") != "", true
}

// rollForward moves an implicit-year date that already passed into next year.
func rollForward(d civil.Date, c Context) (civil.Date, bool) {
	if !c.RollPastDates || !d.Before(c.Today) {
		return d, true
	}
	next := civil.Date{Year: d.Year + 1, Month: d.Month, Day: d.Day}
	return next, next.IsValid()
}

// extractStartDate handles absolute start dates. A match carrying a "bound"
// group ("to July 18") belongs to the end date and is declined.
func extractStartDate(m Match, c Context) (any, bool) {
	if m.Group("bound") != "" {
		return nil, false
	}
	d, explicit, ok := calendarDate(m, c)
	if !ok {
		return nil, false
	}
	if !explicit {
		if d, ok = rollForward(d, c); !ok {
			return nil, false
		}
	}
	return d, true
}

// extractRelativeDay resolves today/tomorrow/the day after tomorrow.
func extractRelativeDay(m Match, c Context) (any, bool) {
	rel := normalizeKeyword(m.Group("rel"))
	switch {
	case strings.HasSuffix(rel, "day after tomorrow"):
		return c.Today.AddDays(2), true
	case rel == "tomorrow":
		return c.Today.AddDays(1), true
	case rel == "today" || rel == "tonight":
		return c.Today, true
	}
	return nil, false
}

func weekdayOf(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// upcoming returns the first date on or after from that falls on wd.
func upcoming(from civil.Date, wd time.Weekday) civil.Date {
	delta := (int(wd) - int(weekdayOf(from)) + 7) % 7
	return from.AddDays(delta)
}

// extractWeekday resolves "next Monday" (strictly after today) and
// "this/coming Monday" (today or later).
func extractWeekday(m Match, c Context) (any, bool) {
	wd, ok := weekdays[strings.ToLower(m.Group("weekday"))]
	if !ok {
		return nil, false
	}
	if strings.EqualFold(m.Group("which"), "next") {
		return upcoming(c.Today.AddDays(1), wd), true
	}
	return upcoming(c.Today, wd), true
}

// extractWeekend resolves "this weekend" to the coming Saturday and
// "next weekend" to the Saturday after that.
func extractWeekend(m Match, c Context) (any, bool) {
	sat := upcoming(c.Today, time.Saturday)
	if weekdayOf(c.Today) == time.Sunday {
		sat = c.Today.AddDays(-1)
	}
	if strings.EqualFold(m.Group("which"), "next") {
		return sat.AddDays(7), true
	}
	if sat.Before(c.Today) {
		return c.Today, true
	}
	return sat, true
}

// extractInDays resolves "in N days" / "in a week" from today.
func extractInDays(m Match, c Context) (any, bool) {
	n := 1
	if s := m.Group("count"); s != "" {
		var ok bool
		if n, ok = parseCount(s); !ok || n <= 0 {
			return nil, false
		}
	}
	days := n
	if strings.HasPrefix(strings.ToLower(m.Group("unit")), "week") {
		days = 7 * n
	}
	if days > 366 {
		return nil, false
	}
	return c.Today.AddDays(days), true
}

// extractEndDate handles absolute end dates. Without an explicit year the
// end date is placed on or after the resolved start date.
func extractEndDate(m Match, c Context) (any, bool) {
	d, explicit, ok := calendarDate(m, c)
	if !ok {
		return nil, false
	}
	if explicit {
		return d, true
	}
	if c.StartDate == nil {
		rolled, ok := rollForward(d, c)
		return rolled, ok
	}
	start := *c.StartDate
	d = civil.Date{Year: start.Year, Month: d.Month, Day: d.Day}
	if d.Before(start) {
		d.Year++
	}
	return d, d.IsValid()
}

// extractRangeEnd resolves the bare day in "July 10-15" against the start
// date's month, moving to the following month when the day does not come
// after the start.
func extractRangeEnd(m Match, c Context) (any, bool) {
	if c.StartDate == nil {
		return nil, false
	}
	day, ok := parseDay(m.Group("day"))
	if !ok {
		return nil, false
	}
	start := *c.StartDate
	d := civil.Date{Year: start.Year, Month: start.Month, Day: day}
	if !d.After(start) {
		next := civil.Date{Year: start.Year, Month: start.Month, Day: 1}.In(time.UTC).AddDate(0, 1, 0)
		d = civil.Date{Year: next.Year(), Month: next.Month(), Day: day}
	}
	if !d.IsValid() {
		return nil, false
	}
	return d, true
}

// extractDuration computes the end date from "for N days|nights|weeks". A
// stay of N days ends on start+(N-1); N nights ends on start+N.
func extractDuration(m Match, c Context) (any, bool) {
	if c.StartDate == nil {
		return nil, false
	}
	n := 1
	if s := m.Group("count"); s != "" {
		var ok bool
		if n, ok = parseCount(s); !ok {
			return nil, false
		}
	}
	if n <= 0 {
		return nil, false
	}
	var offset int
	switch unit := strings.ToLower(m.Group("unit")); {
	case strings.HasPrefix(unit, "night"):
		offset = n
	case strings.HasPrefix(unit, "week"):
		offset = 7*n - 1
	default:
		offset = n - 1
	}
	if offset > 366 {
		return nil, false
	}
	return c.StartDate.AddDays(offset), true
}

// extractTravelerCount reads an explicit head count. "with 2 friends" counts
// the speaker too; "with my wife and 2 kids" also counts the partner.
func extractTravelerCount(m Match, _ Context) (any, bool) {
	n, ok := parseCount(m.Group("count"))
	if !ok {
		return nil, false
	}
	if m.Group("others") != "" {
		n++
	}
	if m.Group("partner") != "" {
		n++
	}
	if n < 1 || n > 99 {
		return nil, false
	}
	return n, true
}

// extractTravelerGroup maps named groups to their heuristic default sizes.
func extractTravelerGroup(m Match, c Context) (any, bool) {
	switch {
	case m.Group("of") != "":
		// "a couple of days" is not a couple; "family of 5" is counted elsewhere.
		return nil, false
	case m.Group("solo") != "":
		return soloTravelers, true
	case m.Group("couple") != "":
		return coupleTravelers, true
	case m.Group("family") != "":
		if c.FamilySize > 0 {
			return c.FamilySize, true
		}
		return defaultFamilyOf, true
	}
	return nil, false
}

var (
	plainAmount  = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$|^\d+(?:\.\d+)?$`)
	shortAmount  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*k$`)
	amountTokens = regexp.MustCompile(`[\s-]+`)
)

// extractBudget normalizes the amount group into currency-less decimal text.
func extractBudget(m Match, _ Context) (any, bool) {
	text, ok := parseAmount(m.Group("amount"))
	if !ok {
		return nil, false
	}
	return text, true
}

func parseAmount(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case plainAmount.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
		if whole, frac, found := strings.Cut(s, "."); found && strings.Trim(frac, "0") == "" {
			s = whole
		}
		if v, err := strconv.ParseFloat(s, 64); err != nil || v <= 0 {
			return "", false
		}
		return s, true
	case shortAmount.MatchString(s):
		v, err := strconv.ParseFloat(shortAmount.FindStringSubmatch(s)[1], 64)
		if err != nil || v <= 0 {
			return "", false
		}
		return strconv.FormatFloat(v*1000, 'f', -1, 64), true
	}
	v, ok := parseSpelledNumber(s)
	if !ok || v <= 0 {
		return "", false
	}
	return strconv.Itoa(v), true
}

// parseSpelledNumber handles "two thousand", "fifteen hundred",
// "two thousand five hundred" and "a grand".
func parseSpelledNumber(s string) (int, bool) {
	words := amountTokens.Split(strings.TrimSpace(s), -1)
	total, current, numeric := 0, 0, 0
	for _, w := range words {
		switch {
		case w == "" || w == "and":
			continue
		case w == "a":
			current = 1
		case numberWords[w] > 0:
			current += numberWords[w]
			numeric++
		case tensWords[w] > 0:
			current += tensWords[w]
			numeric++
		case w == "hundred":
			current = max(current, 1) * 100
			numeric++
		case magnitudeWords[w] == 1000:
			total += max(current, 1) * 1000
			current = 0
			numeric++
		default:
			return 0, false
		}
	}
	if numeric == 0 {
		return 0, false
	}
	return total + current, true
}

func extractAccommodation(m Match, _ Context) (any, bool) {
	kind, ok := accommodationSynonyms[normalizeKeyword(m.Group("kind"))]
	if !ok {
		return nil, false
	}
	return kind, true
}

func extractInterests(m Match, _ Context) (any, bool) {
	return lookupTags(interestKeywords, m.Group("kw"))
}

func extractTransport(m Match, _ Context) (any, bool) {
	return lookupTags(transportKeywords, m.Group("kw"))
}

func lookupTags(table map[string][]string, kw string) (any, bool) {
	tags, ok := table[normalizeKeyword(kw)]
	if !ok || len(tags) == 0 {
		return nil, false
	}
	return append([]string(nil), tags...), true
}
