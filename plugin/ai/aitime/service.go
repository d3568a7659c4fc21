package aitime

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service implements TimeService with rule-based parsing.
type Service struct {
	defaultTimezone *time.Location
}

// NewService creates a new time service.
func NewService(defaultTimezone string) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.Local
	}
	return &Service{
		defaultTimezone: loc,
	}
}

// Normalize standardizes time expressions.
func (s *Service) Normalize(_ context.Context, input string, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = s.defaultTimezone
	}

	parser := NewParser(loc)
	return parser.Parse(input)
}

// ParseNaturalTime parses natural language time expressions.
func (s *Service) ParseNaturalTime(_ context.Context, input string, reference time.Time) (TimeRange, error) {
	// First try to parse as a time range keyword
	tr, err := s.parseRangeKeyword(input, reference)
	if err == nil {
		return tr, nil
	}

	// Then try to parse as a specific time
	// Create parser with reference time as "now" for relative date parsing
	parser := &Parser{
		timezone: reference.Location(),
		now:      func() time.Time { return reference },
	}
	t, err := parser.Parse(input)
	if err != nil {
		return TimeRange{}, err
	}

	// For specific times, default to 1-hour duration
	return TimeRange{
		Start: t,
		End:   t.Add(time.Hour),
	}, nil
}

// parseRangeKeyword parses time range keywords like "today", "this week".
func (s *Service) parseRangeKeyword(input string, ref time.Time) (TimeRange, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	loc := ref.Location()
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	// Day ranges
	dayRanges := map[string]int{
		"today":                0,
		"tomorrow":             1,
		"day after tomorrow":   2,
		"yesterday":            -1,
		"day before yesterday": -2,
	}

	if offset, ok := dayRanges[input]; ok {
		start := dayStart.AddDate(0, 0, offset)
		return TimeRange{Start: start, End: start.Add(24 * time.Hour)}, nil
	}

	// Week ranges
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	mondayOffset := -(weekday - 1)

	weekRanges := map[string]int{
		"this week": 0,
		"next week": 7,
		"last week": -7,
	}

	if offset, ok := weekRanges[input]; ok {
		monday := dayStart.AddDate(0, 0, mondayOffset+offset)
		return TimeRange{Start: monday, End: monday.Add(7 * 24 * time.Hour)}, nil
	}

	// Month ranges
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)

	switch input {
	case "this month":
		return TimeRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}, nil
	case "next month":
		start := monthStart.AddDate(0, 1, 0)
		return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case "last month":
		start := monthStart.AddDate(0, -1, 0)
		return TimeRange{Start: start, End: monthStart}, nil
	}

	return TimeRange{}, fmt.Errorf("%w: unable to parse expression %q", ErrInvalidTimeFormat, input)
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
