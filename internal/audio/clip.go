// Package audio provides the PCM clip model shared by the whole
// renderer: decoding, resampling, silence, fades, take segmentation and
// WAV encoding. Every clip in one run uses the same sample rate and a
// single mono channel; heterogeneous inputs are converted at ingestion.
package audio

import (
	"fmt"
	"time"
)

// SampleRate is the fixed sample rate for a rendering run.
const SampleRate = 44100

const maxSample = 32767

// Clip is a duration-bearing buffer of signed 16-bit mono PCM samples.
type Clip struct {
	Samples []int16
	Rate    int
}

// New returns an empty clip at the given sample rate.
func New(rate int) *Clip {
	return &Clip{Rate: rate}
}

// Silence returns a clip of silence with the given duration.
func Silence(d time.Duration, rate int) *Clip {
	return &Clip{Samples: make([]int16, DurationToSamples(d, rate)), Rate: rate}
}

// DurationToSamples converts a duration to a sample count at rate.
func DurationToSamples(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(rate) / int64(time.Second))
}

// Duration returns the clip length as a duration.
func (c *Clip) Duration() time.Duration {
	if c.Rate == 0 {
		return 0
	}
	return time.Duration(int64(len(c.Samples)) * int64(time.Second) / int64(c.Rate))
}

// Len returns the clip length in samples.
func (c *Clip) Len() int { return len(c.Samples) }

// Clone returns an independent copy of the clip.
func (c *Clip) Clone() *Clip {
	out := &Clip{Samples: make([]int16, len(c.Samples)), Rate: c.Rate}
	copy(out.Samples, c.Samples)
	return out
}

// Append concatenates other onto the clip. The rates must match; rate
// conversion happens at ingestion, never during assembly.
func (c *Clip) Append(other *Clip) error {
	if other.Rate != c.Rate {
		return fmt.Errorf("sample rate mismatch: clip %d Hz, appending %d Hz", c.Rate, other.Rate)
	}
	c.Samples = append(c.Samples, other.Samples...)
	return nil
}

// AppendSilence appends d of silence to the clip.
func (c *Clip) AppendSilence(d time.Duration) {
	c.Samples = append(c.Samples, make([]int16, DurationToSamples(d, c.Rate))...)
}

// PadTo extends the clip with silence until it is n samples long.
func (c *Clip) PadTo(n int) {
	if len(c.Samples) < n {
		c.Samples = append(c.Samples, make([]int16, n-len(c.Samples))...)
	}
}

// TruncateTo shortens the clip to at most n samples.
func (c *Clip) TruncateTo(n int) {
	if n >= 0 && len(c.Samples) > n {
		c.Samples = c.Samples[:n]
	}
}

// Slice returns a copy of the sample range [from, to).
func (c *Clip) Slice(from, to int) *Clip {
	if from < 0 {
		from = 0
	}
	if to > len(c.Samples) {
		to = len(c.Samples)
	}
	if from >= to {
		return New(c.Rate)
	}
	out := &Clip{Samples: make([]int16, to-from), Rate: c.Rate}
	copy(out.Samples, c.Samples[from:to])
	return out
}

// FadeIn applies a linear fade-in ramp over d at the start of the clip.
func (c *Clip) FadeIn(d time.Duration) {
	n := DurationToSamples(d, c.Rate)
	if n > len(c.Samples) {
		n = len(c.Samples)
	}
	for i := 0; i < n; i++ {
		c.Samples[i] = int16(float64(c.Samples[i]) * float64(i) / float64(n))
	}
}

// FadeOut applies a linear fade-out ramp over d at the end of the clip.
func (c *Clip) FadeOut(d time.Duration) {
	n := DurationToSamples(d, c.Rate)
	if n > len(c.Samples) {
		n = len(c.Samples)
	}
	start := len(c.Samples) - n
	for i := 0; i < n; i++ {
		gain := float64(n-1-i) / float64(n)
		c.Samples[start+i] = int16(float64(c.Samples[start+i]) * gain)
	}
}

// Resample converts the clip to the target sample rate using linear
// interpolation. The same clip is returned when no conversion is
// needed.
func (c *Clip) Resample(rate int) *Clip {
	if c.Rate == rate || c.Rate == 0 {
		return c
	}

	ratio := float64(rate) / float64(c.Rate)
	outLen := int(float64(len(c.Samples)) * ratio)
	out := &Clip{Samples: make([]int16, outLen), Rate: rate}

	for i := 0; i < outLen; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= len(c.Samples)-1 {
			out.Samples[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		v := float64(c.Samples[idx])*(1-frac) + float64(c.Samples[idx+1])*frac
		out.Samples[i] = clampSample(v)
	}
	return out
}

func clampSample(v float64) int16 {
	if v > maxSample {
		return maxSample
	}
	if v < -maxSample-1 {
		return -maxSample - 1
	}
	return int16(v)
}
