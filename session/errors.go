package session

import "errors"

var (
	// ErrUnknownCommand indicates a request carried an unrecognised type tag.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMalformedCommand indicates a request could not be decoded.
	ErrMalformedCommand = errors.New("malformed command")
)
