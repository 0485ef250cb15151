package interfaces

import (
	"errors"
	"time"

	"github.com/gopxl/beep/v2"
)

// ErrSourceClaimed indicates a source's audio tap was already taken.
var ErrSourceClaimed = errors.New("source already claimed by another graph")

// Source supplies a continuous decoded audio signal.
type Source interface {
	// ID identifies the source; two values with the same ID are the same source.
	ID() string

	// Format describes the samples the tap produces.
	Format() beep.Format

	// Tap claims the audio stream. It succeeds at most once per source.
	Tap() (beep.Streamer, error)
}

// SourceNotifier announces source changes. A nil Source means the current
// source was lost. The channel closes when no more changes will come.
type SourceNotifier interface {
	Sources() <-chan Source
}

// Scheduler runs a callback at a fixed period.
type Scheduler interface {
	// Every starts invoking fn each period. The returned stop function
	// cancels further invocations and may be called more than once.
	Every(period time.Duration, fn func()) (stop func())
}
