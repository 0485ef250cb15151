package leveler

import "errors"

var (
	// ErrInvalidOptions indicates an Options value cannot be used.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrNotBound indicates an operation needs a bound source.
	ErrNotBound = errors.New("no source bound")

	// ErrNotOffline indicates Render was called on a real-time instance.
	ErrNotOffline = errors.New("render requires offline mode")
)
