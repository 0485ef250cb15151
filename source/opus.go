package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// Opus decoding constants. The decoder produces 48 kHz mono PCM.
const (
	OpusSampleRate = beep.SampleRate(48000)

	// DefaultOpusFrameSize is the number of samples in a 20 ms frame.
	DefaultOpusFrameSize = 960
)

// PacketReader yields Opus packets one at a time and returns io.EOF when the
// stream ends.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// OpusStreamer decodes Opus packets on demand into a beep stream.
type OpusStreamer struct {
	reader  PacketReader
	decoder *opus.Decoder
	output  []byte
	pending [][2]float64
	err     error
}

// NewOpusStreamer creates a streamer for packets of frameSize samples.
func NewOpusStreamer(r PacketReader, frameSize int) *OpusStreamer {
	if frameSize <= 0 {
		frameSize = DefaultOpusFrameSize
	}
	decoder := opus.NewDecoder()
	return &OpusStreamer{
		reader:  r,
		decoder: &decoder,
		output:  make([]byte, frameSize*2),
	}
}

// NewOpus creates an exclusively tappable source from an Opus packet reader.
func NewOpus(id string, r PacketReader, frameSize int) *Stream {
	format := beep.Format{SampleRate: OpusSampleRate, NumChannels: 2, Precision: 2}
	return NewStream(id, format, NewOpusStreamer(r, frameSize))
}

// Stream fills samples with decoded audio.
func (o *OpusStreamer) Stream(samples [][2]float64) (int, bool) {
	if o.err != nil {
		return 0, false
	}

	n := 0
	for n < len(samples) {
		if len(o.pending) == 0 && !o.decodeNext() {
			break
		}
		c := copy(samples[n:], o.pending)
		o.pending = o.pending[c:]
		n += c
	}
	return n, n > 0
}

// Err returns the first read or decode error.
func (o *OpusStreamer) Err() error { return o.err }

// decodeNext decodes one packet into pending. It reports false at the end
// of the stream or on error.
func (o *OpusStreamer) decodeNext() bool {
	packet, err := o.reader.ReadPacket()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		o.err = fmt.Errorf("failed to read opus packet: %w", err)
		return false
	}

	bandwidth, isStereo, err := o.decoder.Decode(packet, o.output)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "OpusStreamer.decodeNext",
			"packet_size": len(packet),
			"error":       err.Error(),
		}).Error("Opus decode failed")
		o.err = fmt.Errorf("opus decode failed: %w", err)
		return false
	}

	logrus.WithFields(logrus.Fields{
		"function":    "OpusStreamer.decodeNext",
		"packet_size": len(packet),
		"bandwidth":   bandwidth.String(),
		"is_stereo":   isStereo,
	}).Debug("Opus packet decoded")

	frames := len(o.output) / 2
	if cap(o.pending) < frames {
		o.pending = make([][2]float64, frames)
	}
	o.pending = o.pending[:frames]
	for i := range o.pending {
		v := float64(int16(binary.LittleEndian.Uint16(o.output[i*2:]))) / 32768
		o.pending[i] = [2]float64{v, v}
	}
	return true
}
