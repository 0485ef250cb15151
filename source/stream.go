package source

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/opd-ai/leveler/interfaces"
	"github.com/sirupsen/logrus"
)

// Stream is an exclusively tappable source backed by a beep.Streamer.
type Stream struct {
	id      string
	format  beep.Format
	s       beep.Streamer
	claimed atomic.Bool
}

// NewStream wraps s as a source with the given identity and format.
func NewStream(id string, format beep.Format, s beep.Streamer) *Stream {
	return &Stream{id: id, format: format, s: s}
}

// ID returns the source identity.
func (st *Stream) ID() string { return st.id }

// Format returns the format of the samples the tap yields.
func (st *Stream) Format() beep.Format { return st.format }

// Tap claims the underlying streamer. Only the first call succeeds.
func (st *Stream) Tap() (beep.Streamer, error) {
	if !st.claimed.CompareAndSwap(false, true) {
		logrus.WithFields(logrus.Fields{
			"function":  "Stream.Tap",
			"source_id": st.id,
		}).Debug("Source already claimed")
		return nil, interfaces.ErrSourceClaimed
	}
	return st.s, nil
}

// Claimed reports whether the source has been tapped.
func (st *Stream) Claimed() bool { return st.claimed.Load() }
