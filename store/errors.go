package store

import "errors"

var (
	// ErrChecksumMismatch indicates the stored record does not match its digest.
	ErrChecksumMismatch = errors.New("settings checksum mismatch")

	// ErrCorrupt indicates the stored file could not be decoded.
	ErrCorrupt = errors.New("settings file corrupt")

	// ErrClosed indicates a write was attempted after Close.
	ErrClosed = errors.New("store closed")
)
