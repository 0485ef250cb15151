package source

import (
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"
)

// ResampleQuality is the beep resampler quality used when a file's rate
// differs from the requested one.
const ResampleQuality = 4

// File is a source backed by an open file.
type File struct {
	*Stream
	closer io.Closer
}

// Close releases the underlying file.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// OpenWAV opens a WAV file as a source. When rate is non-zero and differs
// from the file's rate the stream is resampled to rate.
func OpenWAV(path string, rate beep.SampleRate) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}

	decoded, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode wav file: %w", err)
	}

	var s beep.Streamer = decoded
	if rate > 0 && rate != format.SampleRate {
		logrus.WithFields(logrus.Fields{
			"function": "OpenWAV",
			"path":     path,
			"from":     int(format.SampleRate),
			"to":       int(rate),
		}).Info("Resampling wav source")
		s = beep.Resample(ResampleQuality, format.SampleRate, rate, decoded)
		format.SampleRate = rate
	}

	logrus.WithFields(logrus.Fields{
		"function":    "OpenWAV",
		"path":        path,
		"sample_rate": int(format.SampleRate),
		"channels":    format.NumChannels,
		"length":      decoded.Len(),
	}).Info("Opened wav source")

	return &File{Stream: NewStream(path, format, s), closer: decoded}, nil
}
