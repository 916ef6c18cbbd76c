package voice

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vobble/studio/internal/audio"
)

// RecordedVoice configures a speaker voiced by takes cut from one
// uploaded recording. Zero-valued segmentation fields fall back to the
// audio package defaults.
type RecordedVoice struct {
	File         string `mapstructure:"file"`
	TakeSequence string `mapstructure:"take_sequence"`

	MinSilence  time.Duration `mapstructure:"min_silence"`
	ThresholdDb float64       `mapstructure:"threshold_db"`
	KeepSilence time.Duration `mapstructure:"keep_silence"`
}

// SegmentOptions resolves the per-speaker segmentation settings
// against the defaults.
func (v RecordedVoice) SegmentOptions() audio.SegmentOptions {
	opts := audio.DefaultSegmentOptions()
	if v.MinSilence > 0 {
		opts.MinSilence = v.MinSilence
	}
	if v.ThresholdDb != 0 {
		opts.ThresholdDb = v.ThresholdDb
	}
	if v.KeepSilence > 0 {
		opts.KeepSilence = v.KeepSilence
	}
	return opts
}

// RecordedProvider serves takes from a pre-segmented recording. Each
// utterance consumes the next entry of the take sequence, cycling when
// the script has more lines than the sequence; a 1-based index beyond
// the available takes clamps to the last take.
//
// The take cursor makes the provider order-dependent: its speaker's
// utterances must arrive in script order. It is never called
// concurrently for that reason.
type RecordedProvider struct {
	takes []*audio.Clip
	seq   []int
	next  int
}

// NewRecordedProvider creates a recorded-voice provider from already
// segmented takes. Zero takes or an empty sequence are configuration
// errors, caught before mixing starts.
func NewRecordedProvider(takes []*audio.Clip, seq []int) (*RecordedProvider, error) {
	if len(takes) == 0 {
		return nil, ErrNoTakes
	}
	if len(seq) == 0 {
		return nil, ErrEmptyTakeSequence
	}
	for _, n := range seq {
		if n < 1 {
			return nil, fmt.Errorf("take sequence entries are 1-based, got %d", n)
		}
	}
	return &RecordedProvider{takes: takes, seq: seq}, nil
}

// Kind implements Provider.
func (p *RecordedProvider) Kind() Kind { return KindRecorded }

// ProduceClip returns the next take for this speaker. The utterance
// text is ignored; pacing lives in the recording itself.
func (p *RecordedProvider) ProduceClip(_ context.Context, _ string) (*audio.Clip, error) {
	takeNum := p.seq[p.next%len(p.seq)]
	p.next++

	idx := takeNum - 1
	if idx >= len(p.takes) {
		idx = len(p.takes) - 1
	}
	// Clips are shared with the take library; copy so timeline fades
	// cannot bleed between uses.
	return p.takes[idx].Clone(), nil
}

// Takes returns the take library, in temporal order.
func (p *RecordedProvider) Takes() []*audio.Clip { return p.takes }

// ParseTakeSequence parses a comma-separated take sequence such as
// "1,3,2". Blank and non-numeric entries are ignored.
func ParseTakeSequence(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
