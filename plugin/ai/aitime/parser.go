package aitime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Patterns for time parsing
var (
	// 12-hour clock: "3pm", "3:45 pm", "12:30PM"
	twelveHourPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

	// 24-hour clock: "15:04"
	hourMinPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

	// Bare hour after "at": "at 3"
	atHourPattern = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\b`)

	// Relative offsets: "in 2 hours", "3 days ago"
	inOffsetPattern  = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(minute|hour|day|week|month)s?\b`)
	agoOffsetPattern = regexp.MustCompile(`(?i)\b(\d+)\s+(minute|hour|day|week|month)s?\s+ago\b`)

	// Weekday with optional qualifier: "next monday", "this friday", "tuesday"
	weekdayPattern = regexp.MustCompile(`(?i)\b(next|this|last)?\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// relDayPhrases maps relative day phrases to day offsets.
// Longer phrases come first: "day after tomorrow" must win over "tomorrow".
var relDayPhrases = []struct {
	phrase string
	offset int
}{
	{"day after tomorrow", 2},
	{"day before yesterday", -2},
	{"tomorrow", 1},
	{"yesterday", -1},
	{"tonight", 0},
	{"today", 0},
}

// periodHours maps day period keywords to typical hours.
// Ordering matters: "afternoon" must be checked before "noon", and
// "midnight"/"tonight" before "night".
var periodHours = []struct {
	keyword string
	hour    int
}{
	{"midnight", 0},
	{"early morning", 6},
	{"morning", 9},
	{"afternoon", 14},
	{"noon", 12},
	{"midday", 12},
	{"evening", 19},
	{"tonight", 20},
	{"night", 21},
}

// weekdayIndex maps lowercase weekday names to an offset from Monday.
var weekdayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// Parser parses natural language time expressions.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a new time parser with the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithTimezone returns a new parser with the given timezone.
func (p *Parser) WithTimezone(tz *time.Location) *Parser {
	return &Parser{
		timezone: tz,
		now:      p.now,
	}
}

// Parse parses a time expression and returns the parsed time.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrInvalidTimeFormat)
	}

	now := p.now().In(p.timezone)

	// Try standard formats first
	if t, ok := p.tryStandardFormats(input); ok {
		return t, nil
	}

	// Try relative offsets (e.g., "in 2 hours")
	if t, ok := p.tryRelativeOffset(input, now); ok {
		return t, nil
	}

	// Parse natural language expressions
	return p.parseNaturalTime(input, now)
}

// tryStandardFormats attempts to parse standard date/time formats.
func (p *Parser) tryStandardFormats(input string) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"2006/01/02",
		"01/02/2006 15:04",
		"01/02/2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"15:04:05",
		"15:04",
	}

	now := p.now().In(p.timezone)

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, input, p.timezone); err == nil {
			// If only time, use today's date
			if format == "15:04:05" || format == "15:04" {
				return time.Date(now.Year(), now.Month(), now.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, p.timezone), true
			}
			return t, true
		}
	}

	// Bare 12-hour clock forms like "3pm" or "12:30pm"
	if t, ok := p.tryClockOnly(input, now); ok {
		return t, true
	}

	return time.Time{}, false
}

// tryClockOnly parses inputs that are nothing but a 12-hour clock time.
func (p *Parser) tryClockOnly(input string, now time.Time) (time.Time, bool) {
	m := twelveHourPattern.FindStringSubmatch(input)
	if m == nil || strings.TrimSpace(twelveHourPattern.ReplaceAllString(input, "")) != "" {
		return time.Time{}, false
	}

	hour, minute, ok := twelveHourClock(m)
	if !ok {
		return time.Time{}, false
	}

	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, p.timezone), true
}

// tryRelativeOffset parses relative offsets like "in 2 hours" or "3 days ago".
func (p *Parser) tryRelativeOffset(input string, now time.Time) (time.Time, bool) {
	var n int
	var unit string
	var backwards bool

	if m := inOffsetPattern.FindStringSubmatch(input); m != nil {
		n, _ = strconv.Atoi(m[1])
		unit = strings.ToLower(m[2])
	} else if m := agoOffsetPattern.FindStringSubmatch(input); m != nil {
		n, _ = strconv.Atoi(m[1])
		unit = strings.ToLower(m[2])
		backwards = true
	} else {
		return time.Time{}, false
	}

	if backwards {
		n = -n
	}

	switch unit {
	case "minute":
		return now.Add(time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, n), true
	case "week":
		return now.AddDate(0, 0, 7*n), true
	case "month":
		return now.AddDate(0, n, 0), true
	}

	return time.Time{}, false
}

// parseNaturalTime parses natural language expressions like "tomorrow 3pm".
func (p *Parser) parseNaturalTime(input string, now time.Time) (time.Time, error) {
	lower := strings.ToLower(input)
	result := now

	// Parse date part
	dateModified := false

	for _, rel := range relDayPhrases {
		if strings.Contains(lower, rel.phrase) {
			result = result.AddDate(0, 0, rel.offset)
			dateModified = true
			break
		}
	}

	if !dateModified {
		if weekday, ok := p.parseWeekday(lower, now); ok {
			result = weekday
			dateModified = true
		}
	}

	// Parse time part
	hour, minute, timeFound := p.parseTimePart(lower)

	if timeFound {
		return time.Date(result.Year(), result.Month(), result.Day(),
			hour, minute, 0, 0, p.timezone), nil
	}

	// If only date was found, default to 9:00
	if dateModified {
		return time.Date(result.Year(), result.Month(), result.Day(),
			9, 0, 0, 0, p.timezone), nil
	}

	return time.Time{}, fmt.Errorf("%w: unable to parse %q", ErrInvalidTimeFormat, input)
}

// parseWeekday parses weekday expressions.
func (p *Parser) parseWeekday(input string, now time.Time) (time.Time, bool) {
	m := weekdayPattern.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, false
	}

	qualifier := strings.ToLower(m[1])
	target := weekdayIndex[strings.ToLower(m[2])]

	// Current weekday with Monday = 0
	current := int(now.Weekday())
	if current == 0 {
		current = 7
	}
	current--

	switch qualifier {
	case "next":
		daysUntilNextMonday := 7 - current
		return now.AddDate(0, 0, daysUntilNextMonday+target), true
	case "last":
		return now.AddDate(0, 0, -(current+7)+target), true
	case "this":
		return now.AddDate(0, 0, target-current), true
	default:
		// Bare weekday means the upcoming one
		diff := target - current
		if diff <= 0 {
			diff += 7
		}
		return now.AddDate(0, 0, diff), true
	}
}

// parseTimePart parses the time part of an expression.
func (p *Parser) parseTimePart(input string) (hour, minute int, found bool) {
	// 12-hour clock takes priority: "3pm", "12:30 pm"
	if m := twelveHourPattern.FindStringSubmatch(input); m != nil {
		if h, mm, ok := twelveHourClock(m); ok {
			return h, mm, true
		}
	}

	// 24-hour clock: "15:04"
	if m := hourMinPattern.FindStringSubmatch(input); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h >= 0 && h <= 24 && mm >= 0 && mm < 60 {
			return h, mm, true
		}
	}

	// Day period keywords: "morning", "noon", "evening"
	for _, period := range periodHours {
		if strings.Contains(input, period.keyword) {
			return period.hour, 0, true
		}
	}

	// Bare hour: "at 3". Small hours without am/pm usually mean the afternoon.
	if m := atHourPattern.FindStringSubmatch(input); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 0 && h <= 24 {
			if h <= 7 {
				h += 12
			}
			return h, 0, true
		}
	}

	return 0, 0, false
}

// twelveHourClock converts a twelveHourPattern match to hour and minute.
func twelveHourClock(m []string) (hour, minute int, ok bool) {
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	meridiem := strings.ToLower(m[3])
	if meridiem == "pm" && hour != 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	return hour, minute, true
}
