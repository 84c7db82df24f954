package chatlog

import (
	"regexp"
	"strings"
)

// Grammar is the clock convention a transcript's timestamps follow.
type Grammar int

const (
	TwelveHour Grammar = iota
	TwentyFourHour
)

func (g Grammar) String() string {
	switch g {
	case TwelveHour:
		return "12h"
	case TwentyFourHour:
		return "24h"
	default:
		return "unknown"
	}
}

// ParseGrammar is the inverse of Grammar.String.
func ParseGrammar(s string) (Grammar, bool) {
	switch s {
	case "12h":
		return TwelveHour, true
	case "24h":
		return TwentyFourHour, true
	}
	return TwelveHour, false
}

// sp matches one whitespace character, including the no-break spaces some
// exporters put between the time and the meridiem.
const sp = `[\s\p{Zs}]`

var (
	boundary12 = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4},` + sp + `\d{1,2}:\d{2}` + sp + `(?i:[ap]m)` + sp + `-` + sp)
	boundary24 = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4},` + sp + `\d{1,2}:\d{2}` + sp + `-` + sp)

	// loose markers for the line scan in Detect
	looseMeridiem = regexp.MustCompile(`\d{1,2}:\d{2}` + sp + `?(?i:[ap]m)`)
	looseDash     = regexp.MustCompile(`\d{1,2}:\d{2}` + sp + `-`)
)

// Boundary returns the pattern marking the start of a message line.
func (g Grammar) Boundary() *regexp.Regexp {
	if g == TwentyFourHour {
		return boundary24
	}
	return boundary12
}

// detectScanLines is how many leading lines Detect inspects when neither
// boundary pattern matches anywhere.
const detectScanLines = 5

// Detect picks the grammar whose boundary pattern matches the text most often.
// Ties between nonzero counts go to TwelveHour. When nothing matches, the first
// few lines are scanned for a loose time marker, and TwelveHour is the default.
func Detect(text string) Grammar {
	count12 := len(boundary12.FindAllStringIndex(text, -1))
	count24 := len(boundary24.FindAllStringIndex(text, -1))

	switch {
	case count12 > 0 && count12 >= count24:
		return TwelveHour
	case count24 > 0:
		return TwentyFourHour
	}

	lines := strings.SplitN(text, "\n", detectScanLines+1)
	if len(lines) > detectScanLines {
		lines = lines[:detectScanLines]
	}
	for _, line := range lines {
		if looseMeridiem.MatchString(line) {
			return TwelveHour
		}
		if looseDash.MatchString(line) {
			return TwentyFourHour
		}
	}
	return TwelveHour
}
