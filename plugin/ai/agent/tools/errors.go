package tools

import "errors"

// Sentinel errors produced by the time tools. They are wrapped with
// context at the failure site so callers can classify failures with
// errors.Is while still seeing what went wrong.
var (
	// ErrParseError indicates the tool arguments could not be decoded.
	ErrParseError = errors.New("parse error")

	// ErrInvalidInput indicates the tool arguments are missing a
	// required field or carry an unusable value.
	ErrInvalidInput = errors.New("invalid input")
)
