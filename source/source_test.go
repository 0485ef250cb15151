package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/opd-ai/leveler/interfaces"
	"github.com/pion/webrtc/v3/pkg/media/oggreader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestStream_TapIsExclusive(t *testing.T) {
	format := beep.Format{SampleRate: 48000, NumChannels: 2, Precision: 2}
	st := NewStream("tab-1", format, constant(0.5))

	assert.Equal(t, "tab-1", st.ID())
	assert.Equal(t, format, st.Format())
	assert.False(t, st.Claimed())

	s, err := st.Tap()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, st.Claimed())

	_, err = st.Tap()
	assert.ErrorIs(t, err, interfaces.ErrSourceClaimed)
}

func writeWAV(t *testing.T, rate beep.SampleRate, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(frames, constant(0.25)), format))
	return path
}

func TestOpenWAV(t *testing.T) {
	path := writeWAV(t, 48000, 4800)

	src, err := OpenWAV(path, 48000)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, beep.SampleRate(48000), src.Format().SampleRate)
	s, err := src.Tap()
	require.NoError(t, err)

	buf := make([][2]float64, 16)
	n, ok := s.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 16, n)
	assert.InDelta(t, 0.25, buf[0][0], 1e-3)
	assert.Equal(t, 4800-16, drain(s))
}

func TestOpenWAV_Resamples(t *testing.T) {
	path := writeWAV(t, 24000, 2400)

	src, err := OpenWAV(path, 48000)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, beep.SampleRate(48000), src.Format().SampleRate)
	s, err := src.Tap()
	require.NoError(t, err)
	assert.InDelta(t, 4800, drain(s), 16)
}

func TestOpenWAV_Missing(t *testing.T) {
	_, err := OpenWAV(filepath.Join(t.TempDir(), "missing.wav"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type packetList struct {
	packets [][]byte
	err     error
}

func (p *packetList) ReadPacket() ([]byte, error) {
	if len(p.packets) == 0 {
		if p.err != nil {
			return nil, p.err
		}
		return nil, io.EOF
	}
	next := p.packets[0]
	p.packets = p.packets[1:]
	return next, nil
}

func TestOpusStreamer_EndOfStream(t *testing.T) {
	s := NewOpusStreamer(&packetList{}, 0)

	n, ok := s.Stream(make([][2]float64, 32))
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

func TestOpusStreamer_ReadError(t *testing.T) {
	boom := errors.New("network reset")
	s := NewOpusStreamer(&packetList{err: boom}, DefaultOpusFrameSize)

	n, ok := s.Stream(make([][2]float64, 32))
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Err(), boom)

	// A failed streamer stays drained.
	_, ok = s.Stream(make([][2]float64, 32))
	assert.False(t, ok)
}

func TestNewOpus_Format(t *testing.T) {
	src := NewOpus("call-7", &packetList{}, 0)

	assert.Equal(t, OpusSampleRate, src.Format().SampleRate)
	assert.Equal(t, 2, src.Format().NumChannels)
	_, err := src.Tap()
	require.NoError(t, err)
	_, err = src.Tap()
	assert.ErrorIs(t, err, interfaces.ErrSourceClaimed)
}

type fakePages struct {
	pages [][]byte
}

func (f *fakePages) ParseNextPage() ([]byte, *oggreader.OggPageHeader, error) {
	if len(f.pages) == 0 {
		return nil, nil, io.EOF
	}
	next := f.pages[0]
	f.pages = f.pages[1:]
	return next, &oggreader.OggPageHeader{}, nil
}

func TestOggPackets_SkipsCommentHeader(t *testing.T) {
	r := &oggPackets{pages: &fakePages{pages: [][]byte{
		[]byte("OpusTags\x00\x00"),
		{0x01, 0x02},
		{0x03},
	}}}

	p, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, p)

	p, err = r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03}, p)

	_, err = r.ReadPacket()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNotifier(t *testing.T) {
	n := NewNotifier(2)
	src := NewStream("a", beep.Format{}, constant(0))

	n.Publish(src)
	n.Lost()
	n.Close()
	n.Close()

	var got []interfaces.Source
	for s := range n.Sources() {
		got = append(got, s)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID())
	assert.Nil(t, got[1])
}
