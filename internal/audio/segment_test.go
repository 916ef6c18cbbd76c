package audio

import (
	"math"
	"testing"
	"time"
)

// tone appends a loud sine burst to the clip.
func tone(c *Clip, d time.Duration) {
	n := DurationToSamples(d, c.Rate)
	for i := 0; i < n; i++ {
		v := 16000 * math.Sin(2*math.Pi*440*float64(i)/float64(c.Rate))
		c.Samples = append(c.Samples, int16(v))
	}
}

// recording builds a synthetic recording alternating voiced bursts and
// silences.
func recording(parts ...time.Duration) *Clip {
	c := New(SampleRate)
	for i, d := range parts {
		if i%2 == 0 {
			tone(c, d)
		} else {
			c.AppendSilence(d)
		}
	}
	return c
}

func TestSplitTakesBasic(t *testing.T) {
	rec := recording(
		600*time.Millisecond, // take 1
		500*time.Millisecond, // splitting silence
		700*time.Millisecond, // take 2
		500*time.Millisecond,
		400*time.Millisecond, // take 3
	)

	takes := SplitTakes(rec, DefaultSegmentOptions())
	if len(takes) != 3 {
		t.Fatalf("got %d takes, want 3", len(takes))
	}

	// Takes come back in temporal order with keep-silence padding, so
	// each should be at least its burst length and no more than burst
	// plus padding on both sides.
	bursts := []time.Duration{600, 700, 400}
	for i, take := range takes {
		burst := bursts[i] * time.Millisecond
		min := burst - 50*time.Millisecond
		max := burst + 2*DefaultKeepSilence + 50*time.Millisecond
		if d := take.Duration(); d < min || d > max {
			t.Errorf("take %d duration = %v, want within [%v, %v]", i+1, d, min, max)
		}
	}
}

func TestSplitTakesShortSilenceDoesNotSplit(t *testing.T) {
	rec := recording(
		400*time.Millisecond,
		100*time.Millisecond, // below MinSilence, stays inside the take
		400*time.Millisecond,
	)

	takes := SplitTakes(rec, DefaultSegmentOptions())
	if len(takes) != 1 {
		t.Fatalf("got %d takes, want 1", len(takes))
	}
}

func TestSplitTakesDiscardsNoiseFragments(t *testing.T) {
	rec := recording(
		20*time.Millisecond, // below the 60ms floor
		500*time.Millisecond,
		400*time.Millisecond,
	)

	opts := DefaultSegmentOptions()
	opts.KeepSilence = 0
	takes := SplitTakes(rec, opts)
	if len(takes) != 1 {
		t.Fatalf("got %d takes, want 1 (noise fragment dropped)", len(takes))
	}
}

func TestSplitTakesLeadingAndTrailingSilenceTrimmed(t *testing.T) {
	c := New(SampleRate)
	c.AppendSilence(600 * time.Millisecond)
	tone(c, 500*time.Millisecond)
	c.AppendSilence(600 * time.Millisecond)

	opts := DefaultSegmentOptions()
	opts.KeepSilence = 0
	takes := SplitTakes(c, opts)
	if len(takes) != 1 {
		t.Fatalf("got %d takes, want 1", len(takes))
	}
	if d := takes[0].Duration(); d > 600*time.Millisecond {
		t.Errorf("take duration = %v, edge silence not trimmed", d)
	}
}

func TestSplitTakesEmptyInput(t *testing.T) {
	if takes := SplitTakes(New(SampleRate), DefaultSegmentOptions()); takes != nil {
		t.Errorf("empty clip produced %d takes", len(takes))
	}
	if takes := SplitTakes(nil, DefaultSegmentOptions()); takes != nil {
		t.Errorf("nil clip produced %d takes", len(takes))
	}
}

func TestSplitTakesAllSilence(t *testing.T) {
	c := Silence(2*time.Second, SampleRate)
	if takes := SplitTakes(c, DefaultSegmentOptions()); len(takes) != 0 {
		t.Errorf("pure silence produced %d takes", len(takes))
	}
}
