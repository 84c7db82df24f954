package chatlog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// LayoutPermissive names the per-row fallback parser in Result.Layout.
const LayoutPermissive = "permissive"

type trimMode int

const (
	trimNone  trimMode = iota
	trimSpace          // drop trailing whitespace
	trimSep            // drop trailing whitespace and the "-" separator
)

type candidate struct {
	layout string
	trim   trimMode
}

// Fixed layouts per grammar, tried in order. Day comes before month, four-digit
// years before two-digit ones. Stamps are upper-cased before parsing, so "PM"
// also covers "pm".
var (
	candidates12 = []candidate{
		{"2/1/2006, 3:04 PM - ", trimNone},
		{"2/1/2006, 3:04 PM -", trimSpace},
		{"2/1/2006, 3:04 PM", trimSep},
		{"2/1/06, 3:04 PM - ", trimNone},
		{"2/1/06, 3:04 PM -", trimSpace},
		{"2/1/06, 3:04 PM", trimSep},
	}
	candidates24 = []candidate{
		{"2/1/2006, 15:04 - ", trimNone},
		{"2/1/2006, 15:04 -", trimSpace},
		{"2/1/2006, 15:04", trimSep},
		{"2/1/06, 15:04 - ", trimNone},
		{"2/1/06, 15:04 -", trimSpace},
		{"2/1/06, 15:04", trimSep},
	}
)

func (g Grammar) candidates() []candidate {
	if g == TwentyFourHour {
		return candidates24
	}
	return candidates12
}

// zeroHour spots a "0:" or "00:" hour, which time.Parse accepts for the
// 12-hour "3" verb although no 12-hour clock shows it.
var zeroHour = regexp.MustCompile(`,\s*0{1,2}[:.]`)

var errZeroHour = errors.New("hour 0 on a 12-hour clock")

func (c candidate) parse(stamp string) (time.Time, error) {
	if strings.Contains(c.layout, "PM") && zeroHour.MatchString(stamp) {
		return time.Time{}, errZeroHour
	}
	switch c.trim {
	case trimSpace:
		stamp = strings.TrimRightFunc(stamp, unicode.IsSpace)
	case trimSep:
		stamp = strings.TrimRightFunc(stamp, unicode.IsSpace)
		stamp = strings.TrimSuffix(stamp, "-")
		stamp = strings.TrimRightFunc(stamp, unicode.IsSpace)
	}
	return time.Parse(c.layout, stamp)
}

// normalizeStamp turns Unicode spaces into ASCII spaces and upper-cases the
// meridiem.
func normalizeStamp(s string) string {
	s = strings.Map(func(r rune) rune {
		if r != ' ' && unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}, s)
	return strings.ToUpper(s)
}

// parseBatch returns the times of all stamps under the first candidate that
// parses every one of them.
func parseBatch(stamps []string, cands []candidate) ([]time.Time, string, bool) {
	out := make([]time.Time, len(stamps))
next:
	for _, c := range cands {
		for i, s := range stamps {
			t, err := c.parse(s)
			if err != nil {
				continue next
			}
			out[i] = t
		}
		return out, c.layout, true
	}
	return nil, "", false
}

var permissiveStamp = regexp.MustCompile(`^(\d{1,4})[/.\-](\d{1,2})[/.\-](\d{1,4})[,\s\p{Zs}]+` +
	`(\d{1,2})[:.](\d{2})(?:[:.](\d{2}))?[\s\p{Zs}]*` +
	`(?i:([ap])\.?m\.?)?[\s\p{Zs}]*-?[\s\p{Zs}]*$`)

// parsePermissive reads one stamp without a fixed layout. Day comes first
// unless the values only make sense month first; a leading four-digit field
// is read as year/month/day. Seconds are discarded.
func parsePermissive(stamp string) (time.Time, bool) {
	m := permissiveStamp.FindStringSubmatch(strings.TrimSpace(stamp))
	if m == nil {
		return time.Time{}, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	c, _ := strconv.Atoi(m[3])

	var year, month, day int
	switch {
	case len(m[1]) == 4:
		if len(m[3]) > 2 {
			return time.Time{}, false
		}
		year, month, day = a, b, c
	case len(m[1]) <= 2:
		day, month = a, b
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		switch len(m[3]) {
		case 2:
			year = expandYear(c)
		case 4:
			year = c
		default:
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}

	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if minute > 59 {
		return time.Time{}, false
	}
	if m[6] != "" {
		if sec, _ := strconv.Atoi(m[6]); sec > 59 {
			return time.Time{}, false
		}
	}
	switch strings.ToLower(m[7]) {
	case "a":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "p":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return time.Time{}, false
		}
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// expandYear maps a two-digit year the way Go's "06" layout does.
func expandYear(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}

// header matches the shortest "Name: " prefix; applied repeatedly it
// reproduces a left-to-right split on every such separator.
var header = regexp.MustCompile(`([\s\S]+?):[\s\p{Zs}]`)

// SplitHeader separates a chunk into sender and body. The first ": " ends the
// sender. Any later "X: " segments are cut out as well and the pieces rejoined
// with single spaces, so "Alice: see: this" gives body " see this". A chunk
// without a header belongs to GroupNotification and is kept verbatim.
func SplitHeader(chunk string) (sender, body string) {
	locs := header.FindAllStringSubmatchIndex(chunk, -1)
	if len(locs) == 0 {
		return GroupNotification, chunk
	}

	parts := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		parts = append(parts, chunk[prev:loc[0]], chunk[loc[2]:loc[3]])
		prev = loc[1]
	}
	parts = append(parts, chunk[prev:])
	return parts[1], strings.Join(parts[2:], " ")
}

// Period buckets an hour of day: "00-1", "1-2", ..., "22-23", "23-00".
func Period(hour int) string {
	switch hour {
	case 23:
		return "23-00"
	case 0:
		return "00-1"
	default:
		return fmt.Sprintf("%d-%d", hour, hour+1)
	}
}

// NewRecord fills the calendar and clock fields derived from date.
func NewRecord(date time.Time, sender, body string) Record {
	return Record{
		Date:      date,
		Sender:    sender,
		Body:      body,
		OnlyDate:  date.Format(time.DateOnly),
		Year:      date.Year(),
		MonthNum:  int(date.Month()),
		MonthName: date.Month().String(),
		Day:       date.Day(),
		DayName:   date.Weekday().String(),
		Hour:      date.Hour(),
		Minute:    date.Minute(),
		Period:    Period(date.Hour()),
	}
}

// Build turns pairs into records, silently dropping rows whose timestamp
// cannot be parsed.
func Build(pairs []Pair, g Grammar) []Record {
	return BuildResult(pairs, g).Records
}

// BuildResult is Build with the parse bookkeeping kept. A fixed layout is used
// only if it parses every stamp in the batch; otherwise each stamp goes
// through the permissive parser on its own.
func BuildResult(pairs []Pair, g Grammar) Result {
	res := Result{Grammar: g, Matches: len(pairs), Records: []Record{}}
	if len(pairs) == 0 {
		return res
	}

	stamps := make([]string, len(pairs))
	for i, p := range pairs {
		stamps[i] = normalizeStamp(p.Stamp)
	}

	dates, layout, ok := parseBatch(stamps, g.candidates())
	valid := make([]bool, len(pairs))
	if ok {
		res.Layout = layout
		for i := range valid {
			valid[i] = true
		}
	} else {
		res.Layout = LayoutPermissive
		dates = make([]time.Time, len(pairs))
		for i, s := range stamps {
			dates[i], valid[i] = parsePermissive(s)
		}
	}

	for i, p := range pairs {
		if !valid[i] {
			res.Dropped++
			continue
		}
		// The header split sees the raw chunk: a terminator after a trailing
		// colon still counts as the space of a "Name: " separator.
		sender, body := SplitHeader(p.Chunk)
		rec := NewRecord(dates[i], sender, strings.TrimRight(body, "\r\n"))
		rec.Line = p.Line
		res.Records = append(res.Records, rec)
	}
	return res
}
