package audio

import (
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// EncodeWAV writes the clip as a 16-bit PCM mono WAV stream.
func EncodeWAV(w io.Writer, c *Clip) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(c.Rate),
		NumChannels: 1,
		Precision:   2,
	}

	// wav.Encode patches the RIFF header after writing, so it needs a
	// seekable target; buffer in memory and copy out.
	buf := &seekBuffer{}
	if err := wav.Encode(buf, &clipStreamer{clip: c}, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if _, err := w.Write(buf.data); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// clipStreamer adapts a Clip to beep.Streamer.
type clipStreamer struct {
	clip *Clip
	pos  int
}

func (s *clipStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.clip.Samples) {
		return 0, false
	}
	n := 0
	for n < len(samples) && s.pos < len(s.clip.Samples) {
		v := float64(s.clip.Samples[s.pos]) / (maxSample + 1)
		samples[n][0] = v
		samples[n][1] = v
		n++
		s.pos++
	}
	return n, true
}

func (s *clipStreamer) Err() error { return nil }

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if b.pos+len(p) > len(b.data) {
		grown := make([]byte, b.pos+len(p))
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("seek before start")
	}
	b.pos = int(next)
	return next, nil
}
