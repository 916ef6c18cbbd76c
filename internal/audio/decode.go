package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// streamChunk is the number of frames pulled per Stream call while
// draining a decoder.
const streamChunk = 4096

// DecodeMP3 decodes MP3 bytes into a mono clip at the given rate.
func DecodeMP3(data []byte, rate int) (*Clip, error) {
	s, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	defer s.Close()
	return drain(s, format, rate)
}

// DecodeWAV decodes WAV bytes into a mono clip at the given rate.
func DecodeWAV(data []byte, rate int) (*Clip, error) {
	s, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer s.Close()
	return drain(s, format, rate)
}

// DecodeFile decodes a .wav or .mp3 recording from disk into a mono
// clip at the given rate. Other extensions are rejected.
func DecodeFile(path string, rate int) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return DecodeWAV(data, rate)
	case ".mp3":
		return DecodeMP3(data, rate)
	default:
		return nil, fmt.Errorf("unsupported recording format %q (want .wav or .mp3)", filepath.Ext(path))
	}
}

// drain pulls every frame out of a beep streamer, downmixes to mono
// and resamples to the target rate.
func drain(s beep.Streamer, format beep.Format, rate int) (*Clip, error) {
	clip := New(int(format.SampleRate))
	buf := make([][2]float64, streamChunk)

	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			// Channels are averaged; mono sources carry the same
			// value in both slots.
			clip.Samples = append(clip.Samples, clampSample((frame[0]+frame[1])/2*maxSample))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stream audio: %w", err)
	}
	if len(clip.Samples) == 0 {
		return nil, fmt.Errorf("decoded audio is empty")
	}
	return clip.Resample(rate), nil
}
