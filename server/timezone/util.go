// Package timezone provides timezone utilities for the timesense application.
//
// This package handles timezone parsing, conversion, and formatting to ensure
// consistent time handling between the agent tools, the HTTP API, and the UI.
package timezone

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidTimezone is returned when a timezone identifier cannot be
// resolved to an IANA location. Callers can match it with errors.Is.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC

	// Local is the local timezone
	Local = time.Local
)

// abbreviationAliases maps common timezone abbreviations to IANA identifiers.
// Users routinely write "3:45pm EST" instead of "America/New_York"; the
// abbreviations are ambiguous in general, so this table picks the most common
// reading of each.
var abbreviationAliases = map[string]string{
	"EST":  "America/New_York",
	"EDT":  "America/New_York",
	"CST":  "America/Chicago",
	"CDT":  "America/Chicago",
	"MST":  "America/Denver",
	"MDT":  "America/Denver",
	"PST":  "America/Los_Angeles",
	"PDT":  "America/Los_Angeles",
	"GMT":  "Europe/London",
	"BST":  "Europe/London",
	"CET":  "Europe/Paris",
	"CEST": "Europe/Paris",
	"IST":  "Asia/Kolkata",
	"JST":  "Asia/Tokyo",
	"KST":  "Asia/Seoul",
	"AEST": "Australia/Sydney",
	"AEDT": "Australia/Sydney",
}

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Shanghai").
// Common abbreviations (EST, PST, JST, ...) are resolved through their usual
// IANA equivalent. If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	if alias, ok := abbreviationAliases[strings.ToUpper(tz)]; ok {
		tz = alias
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	if _, ok := abbreviationAliases[strings.ToUpper(tz)]; ok {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// FormatOffset formats a UTC offset in seconds as "UTC±HH:MM".
func FormatOffset(offsetSeconds int) string {
	sign := "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetSeconds/3600, (offsetSeconds%3600)/60)
}

// OffsetAt returns the formatted UTC offset of the location at the given time.
func OffsetAt(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = UTC
	}
	_, offset := t.In(loc).Zone()
	return FormatOffset(offset)
}

// IsDST reports whether the given time is in daylight saving time in loc.
func IsDST(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = UTC
	}
	return t.In(loc).IsDST()
}

// Convert converts a wall-clock time from one location to another.
// The returned time carries the target location.
func Convert(t time.Time, target *time.Location) time.Time {
	if target == nil {
		target = UTC
	}
	return t.In(target)
}

// OffsetDifference returns the signed offset difference between two locations
// at the given instant, formatted as e.g. "+5h" or "-3h30m".
func OffsetDifference(t time.Time, source, target *time.Location) string {
	if source == nil {
		source = UTC
	}
	if target == nil {
		target = UTC
	}
	_, srcOffset := t.In(source).Zone()
	_, dstOffset := t.In(target).Zone()
	diff := dstOffset - srcOffset

	sign := "+"
	if diff < 0 {
		sign = "-"
		diff = -diff
	}
	hours := diff / 3600
	minutes := (diff % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("%s%dh", sign, hours)
	}
	return fmt.Sprintf("%s%dh%dm", sign, hours, minutes)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Date(t.In(tz).Year(), t.In(tz).Month(), t.In(tz).Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Date(t.In(tz).Year(), t.In(tz).Month(), t.In(tz).Day(), 23, 59, 59, 999999999, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Now().In(tz)
}

// Common timezone constants
const (
	// TimezoneUTC is the UTC timezone identifier
	TimezoneUTC = "UTC"

	// TimezoneAsiaShanghai is the China Standard Time timezone
	TimezoneAsiaShanghai = "Asia/Shanghai"

	// TimezoneAmericaNewYork is the Eastern Time timezone
	TimezoneAmericaNewYork = "America/New_York"

	// TimezoneAmericaChicago is the Central Time timezone
	TimezoneAmericaChicago = "America/Chicago"

	// TimezoneAmericaLosAngeles is the Pacific Time timezone
	TimezoneAmericaLosAngeles = "America/Los_Angeles"

	// TimezoneEuropeLondon is the GMT/BST timezone
	TimezoneEuropeLondon = "Europe/London"

	// TimezoneEuropeParis is the CET/CEST timezone
	TimezoneEuropeParis = "Europe/Paris"

	// TimezoneAsiaTokyo is the Japan Standard Time timezone
	TimezoneAsiaTokyo = "Asia/Tokyo"

	// TimezoneAsiaKolkata is the India Standard Time timezone
	TimezoneAsiaKolkata = "Asia/Kolkata"

	// TimezoneAustraliaSydney is the AEST/AEDT timezone
	TimezoneAustraliaSydney = "Australia/Sydney"
)

// commonTimezones is the curated zone list offered to the UI.
var commonTimezones = []string{
	TimezoneUTC,
	TimezoneAmericaNewYork,
	TimezoneAmericaChicago,
	"America/Denver",
	TimezoneAmericaLosAngeles,
	"America/Sao_Paulo",
	TimezoneEuropeLondon,
	TimezoneEuropeParis,
	"Europe/Berlin",
	"Europe/Moscow",
	TimezoneAsiaKolkata,
	TimezoneAsiaShanghai,
	"Asia/Singapore",
	TimezoneAsiaTokyo,
	"Asia/Seoul",
	"Asia/Dubai",
	TimezoneAustraliaSydney,
	"Pacific/Auckland",
}

// List returns the curated list of common timezone identifiers, sorted.
func List() []string {
	zones := make([]string, len(commonTimezones))
	copy(zones, commonTimezones)
	sort.Strings(zones)
	return zones
}
