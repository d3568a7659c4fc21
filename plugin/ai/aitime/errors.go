package aitime

import "errors"

// ErrInvalidTimeFormat is returned when a time expression cannot be parsed.
// Parse failures from Normalize and ParseNaturalTime wrap this error so
// callers can match it with errors.Is and attempt input normalization.
var ErrInvalidTimeFormat = errors.New("invalid time format")
