package aitime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_StandardFormats(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	parser := NewParser(loc)

	tests := []struct {
		name     string
		input    string
		wantTime string // Expected time in format "2006-01-02 15:04"
	}{
		{"ISO date", "2026-01-28", "2026-01-28 00:00"},
		{"ISO datetime", "2026-01-28 15:30", "2026-01-28 15:30"},
		{"Slash date", "2026/01/28", "2026-01-28 00:00"},
		{"US date", "01/28/2026", "2026-01-28 00:00"},
		{"Long date", "January 28, 2026", "2026-01-28 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_RelativeDates(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	// Fix "now" to Tuesday 2026-01-27 10:00
	fixedNow := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }}

	tests := []struct {
		name     string
		input    string
		wantDate string // Expected date in format "2006-01-02"
	}{
		{"today", "today", "2026-01-27"},
		{"tomorrow", "tomorrow", "2026-01-28"},
		{"day after tomorrow", "day after tomorrow", "2026-01-29"},
		{"yesterday", "yesterday", "2026-01-26"},
		{"day before yesterday", "day before yesterday", "2026-01-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format("2006-01-02"))
		})
	}
}

func TestParser_ClockTimes(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixedNow := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }}

	tests := []struct {
		name     string
		input    string
		wantTime string // Expected time in format "15:04"
	}{
		{"24h clock", "15:30", "15:30"},
		{"12h pm", "3pm", "15:00"},
		{"12h pm with minutes", "12:30pm", "12:30"},
		{"12h am", "9:15 am", "09:15"},
		{"noon is 12pm", "12pm", "12:00"},
		{"midnight is 12am", "12am", "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("15:04"))
			assert.Equal(t, "2026-01-27", got.Format("2006-01-02"), "clock-only input keeps today's date")
		})
	}
}

func TestParser_CombinedExpressions(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixedNow := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }}

	tests := []struct {
		name     string
		input    string
		wantTime string // Expected time in format "2006-01-02 15:04"
	}{
		{"tomorrow 3pm", "tomorrow 3pm", "2026-01-28 15:00"},
		{"tomorrow at 15:00", "tomorrow at 15:00", "2026-01-28 15:00"},
		{"tomorrow morning", "tomorrow morning", "2026-01-28 09:00"},
		{"tomorrow noon", "tomorrow noon", "2026-01-28 12:00"},
		{"tomorrow afternoon", "tomorrow afternoon", "2026-01-28 14:00"},
		{"tonight", "tonight", "2026-01-27 20:00"},
		{"date only defaults to 9am", "tomorrow", "2026-01-28 09:00"},
		{"bare small hour assumes pm", "tomorrow at 3", "2026-01-28 15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_RelativeOffsets(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixedNow := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }}

	tests := []struct {
		name     string
		input    string
		wantTime string
	}{
		{"in 2 hours", "in 2 hours", "2026-01-27 12:00"},
		{"in 30 minutes", "in 30 minutes", "2026-01-27 10:30"},
		{"in 3 days", "in 3 days", "2026-01-30 10:00"},
		{"in 1 week", "in 1 week", "2026-02-03 10:00"},
		{"2 hours ago", "2 hours ago", "2026-01-27 08:00"},
		{"1 month ago", "1 month ago", "2025-12-27 10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_Weekdays(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	// Tuesday
	fixedNow := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }}

	tests := []struct {
		name     string
		input    string
		wantDate string
	}{
		{"this friday", "this friday", "2026-01-30"},
		{"this monday is in the past", "this monday", "2026-01-26"},
		{"next monday", "next monday", "2026-02-02"},
		{"next friday", "next friday", "2026-02-06"},
		{"last wednesday", "last wednesday", "2026-01-21"},
		{"bare weekday is upcoming", "friday", "2026-01-30"},
		{"bare weekday same day rolls over", "tuesday", "2026-02-03"},
		{"weekday with time", "next monday 3pm", "2026-02-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format("2006-01-02"))
		})
	}
}

func TestParser_Errors(t *testing.T) {
	parser := NewParser(time.UTC)

	for _, input := range []string{"", "   ", "gibberish", "the meaning of life"} {
		_, err := parser.Parse(input)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, "input %q should not parse", input)
	}
}

func TestService_ParseNaturalTime_RangeKeywords(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	svc := NewService("America/New_York")
	// Tuesday
	ref := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string
	}{
		{"today", "today", "2026-01-27 00:00", "2026-01-28 00:00"},
		{"tomorrow", "tomorrow", "2026-01-28 00:00", "2026-01-29 00:00"},
		{"this week", "this week", "2026-01-26 00:00", "2026-02-02 00:00"},
		{"next week", "next week", "2026-02-02 00:00", "2026-02-09 00:00"},
		{"last week", "last week", "2026-01-19 00:00", "2026-01-26 00:00"},
		{"this month", "this month", "2026-01-01 00:00", "2026-02-01 00:00"},
		{"next month", "next month", "2026-02-01 00:00", "2026-03-01 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := svc.ParseNaturalTime(ctx, tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, tr.Start.Format("2006-01-02 15:04"))
			assert.Equal(t, tt.wantEnd, tr.End.Format("2006-01-02 15:04"))
		})
	}
}

func TestService_ParseNaturalTime_SpecificTime(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	svc := NewService("America/New_York")
	ref := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)

	tr, err := svc.ParseNaturalTime(context.Background(), "tomorrow 3pm", ref)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-28 15:00", tr.Start.Format("2006-01-02 15:04"))
	assert.Equal(t, time.Hour, tr.End.Sub(tr.Start), "specific times default to 1-hour duration")
}

func TestService_Normalize_TimezoneFallback(t *testing.T) {
	svc := NewService("America/New_York")

	// Invalid timezone falls back to the service default.
	got, err := svc.Normalize(context.Background(), "2026-01-28 15:00", "Not/AZone")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", got.Location().String())
}
