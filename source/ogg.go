package source

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pion/webrtc/v3/pkg/media/oggreader"
	"github.com/sirupsen/logrus"
)

var opusTagsMagic = []byte("OpusTags")

// pageParser is the part of oggreader.OggReader used to pull pages.
type pageParser interface {
	ParseNextPage() ([]byte, *oggreader.OggPageHeader, error)
}

// oggPackets reads one Opus packet per Ogg page and skips the comment
// header.
type oggPackets struct {
	pages pageParser
}

// ReadPacket returns the next audio page payload.
func (o *oggPackets) ReadPacket() ([]byte, error) {
	for {
		payload, _, err := o.pages.ParseNextPage()
		if err != nil {
			return nil, err
		}
		if bytes.HasPrefix(payload, opusTagsMagic) {
			continue
		}
		return payload, nil
	}
}

// OpenOgg opens an Ogg/Opus file as a source.
func OpenOgg(path string, frameSize int) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ogg file: %w", err)
	}

	reader, header, err := oggreader.NewWith(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read ogg header: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "OpenOgg",
		"path":        path,
		"channels":    header.Channels,
		"input_rate":  header.SampleRate,
		"pre_skip":    header.PreSkip,
		"output_rate": int(OpusSampleRate),
	}).Info("Opened ogg/opus source")

	return &File{
		Stream: NewOpus(path, &oggPackets{pages: reader}, frameSize),
		closer: f,
	}, nil
}
