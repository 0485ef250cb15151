package graph

import "errors"

var (
	// ErrBindFailed indicates a source could not be tapped; no graph is active.
	ErrBindFailed = errors.New("bind failed")

	// ErrNilSource indicates Bind was called without a source.
	ErrNilSource = errors.New("source cannot be nil")
)
