// README: Scanner; runs one field parser over the transcript and filters overlapping claims.
package tripparse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Match is one pattern occurrence handed to an Extractor.
type Match struct {
	// Text is the evidence: the occurrence minus any lead/trail context.
	Text   string
	Span   Span
	groups map[string]string
}

// Group returns the text captured by a named group, or "" when the group
// did not participate.
func (m Match) Group(name string) string {
	return m.groups[name]
}

// occurrence is a raw regexp hit before extraction.
type occurrence struct {
	match   Match
	leadEnd int
}

func newOccurrence(expr *regexp.Regexp, text string, loc []int) occurrence {
	start, end := loc[0], loc[1]
	leadEnd := -1
	groups := make(map[string]string)
	for i, name := range expr.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		gs, ge := loc[2*i], loc[2*i+1]
		switch name {
		case "lead":
			start = ge
			leadEnd = ge
		case "trail":
			end = gs
		default:
			groups[name] = text[gs:ge]
		}
	}
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return occurrence{
		match:   Match{Text: text[start:end], Span: Span{Start: start, End: end}, groups: groups},
		leadEnd: leadEnd,
	}
}

// scanField runs every pattern of fp over text. Occurrences intersecting a
// claimed span, or declined by their extractor, are discarded. The returned
// claims include the spans of the emitted tokens.
func scanField(fp FieldParser, text string, claimed []Span, ctx Context, obs Observer) ([]Token, []Span) {
	var tokens []Token
	for _, p := range fp.Patterns {
		emitted := 0
		pos := 0
		for pos <= len(text) {
			loc := p.Expr.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				break
			}
			for i := range loc {
				if loc[i] >= 0 {
					loc[i] += pos
				}
			}
			occ := newOccurrence(p.Expr, text, loc)
			m := occ.match

			if overlapsAny(m.Span, claimed) {
				obs.Observe(Event{Kind: EventOverlap, Field: fp.Field, Pattern: p.Description, Text: m.Text, Confidence: p.Confidence, Span: m.Span})
				pos = resume(text, pos, declinedResume(occ, loc))
				continue
			}
			value, ok := p.Extract(m, ctx)
			if !ok {
				obs.Observe(Event{Kind: EventExtractFailed, Field: fp.Field, Pattern: p.Description, Text: m.Text, Confidence: p.Confidence, Span: m.Span})
				pos = resume(text, pos, declinedResume(occ, loc))
				continue
			}

			tok := Token{
				Field:       fp.Field,
				Value:       value,
				Confidence:  p.Confidence,
				Span:        m.Span,
				Text:        m.Text,
				Description: p.Description,
			}
			tokens = append(tokens, tok)
			claimed = append(claimed, m.Span)
			emitted++
			obs.Observe(Event{Kind: EventToken, Field: fp.Field, Pattern: p.Description, Text: m.Text, Confidence: p.Confidence, Span: m.Span, Accepted: true})
			pos = resume(text, pos, m.Span.End)
		}
		if emitted > 0 && !fp.Field.IsList() {
			break
		}
	}
	return tokens, claimed
}

// declinedResume picks where to search next after a discarded occurrence.
// Restarting right after the lead lets "going to fly to Paris" retry with
// "fly" as the lead.
func declinedResume(occ occurrence, loc []int) int {
	if occ.leadEnd >= 0 {
		return occ.leadEnd
	}
	if occ.match.Span.End > loc[0] {
		return occ.match.Span.End
	}
	return loc[1]
}

// resume guarantees forward progress and never restarts mid-word, since a
// sliced input would otherwise satisfy a leading \b.
func resume(text string, pos, next int) int {
	if next <= pos {
		if pos >= len(text) {
			return len(text) + 1
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		next = pos + size
	}
	for next > 0 && next < len(text) && isWordByte(text[next-1]) && isWordByte(text[next]) {
		next++
	}
	return next
}

func overlapsAny(s Span, claimed []Span) bool {
	for _, c := range claimed {
		if s.Overlaps(c) {
			return true
		}
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

// uncoveredWords lists the words of text outside every token span, skipping
// stopwords. Duplicates are kept once, in order of first appearance.
func uncoveredWords(text string, tokens []Token) []string {
	var out []string
	seen := make(map[string]bool)
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		w := Span{Start: loc[0], End: loc[1]}
		covered := false
		for _, t := range tokens {
			if t.Span.Overlaps(w) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		word := strings.Trim(strings.ToLower(text[w.Start:w.End]), "'")
		if word == "" || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}
