package hook

import "errors"

var (
	// ErrEmptyInput is returned when stdin carries no payload.
	ErrEmptyInput = errors.New("empty hook input")
	// ErrInputTooLarge is returned when the payload exceeds the read limit.
	ErrInputTooLarge = errors.New("hook input exceeds size limit")
	// ErrMalformedInput wraps JSON decoding failures.
	ErrMalformedInput = errors.New("malformed hook input")
)
