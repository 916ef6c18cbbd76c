// Package mix places per-utterance clips on a shared timeline,
// producing one full-episode track and one time-aligned stem per
// speaker.
package mix

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vobble/studio/internal/audio"
	"github.com/vobble/studio/internal/script"
)

// ErrEmptyResult means no event produced any audio; a zero-length
// episode is never exported.
var ErrEmptyResult = errors.New("no audio was generated for any script line")

// GapPolicy holds the silence inserted between consecutive clips,
// depending on whether the speaker changed.
type GapPolicy struct {
	SameSpeaker   time.Duration `mapstructure:"same_speaker"`
	SpeakerChange time.Duration `mapstructure:"speaker_change"`
}

// DefaultGapPolicy returns the standard episode pacing.
func DefaultGapPolicy() GapPolicy {
	return GapPolicy{
		SameSpeaker:   400 * time.Millisecond,
		SpeakerChange: 800 * time.Millisecond,
	}
}

// Source produces the audio clip for one utterance. A nil clip with a
// nil error skips the line; an error wrapping a skip condition does the
// same but is reported in the run summary.
type Source interface {
	ProduceClip(ctx context.Context, text string) (*audio.Clip, error)
}

// SkippedLine records one event that contributed no audio.
type SkippedLine struct {
	Index   int    // event index in script order
	Speaker string // normalized speaker id
	Reason  error  // nil when the line was empty after normalization
}

// Result is the assembled timeline.
type Result struct {
	Full    *audio.Clip            // full episode mix
	Stems   map[string]*audio.Clip // per-speaker stems, same length as Full
	Skipped []SkippedLine          // events that produced no audio
}

// state is the running fold state carried across events. Gap choice
// and stem alignment both depend on it, which is what keeps the fold
// sequential.
type state struct {
	full     *audio.Clip
	stems    map[string]*audio.Clip
	last     string // speaker of the previous placed clip
	position time.Duration
	placed   bool // true once any clip landed on the timeline
}

// Build walks events in script order, obtains a clip per event from
// the speaker's source, and appends clip plus inter-event silence to
// the full mix and every stem, keeping all tracks the same length.
//
// Events whose speaker has no source, and events whose source produces
// no clip, are skipped: they consume no timeline space, charge no gap
// and do not update the previous-speaker state. If nothing at all is
// placed, Build fails with ErrEmptyResult. Cancelling ctx abandons the
// pass; partial tracks are never returned.
func Build(ctx context.Context, events []script.Event, sources map[string]Source, gaps GapPolicy, rate int) (*Result, error) {
	st := state{
		full:  audio.New(rate),
		stems: make(map[string]*audio.Clip, len(sources)),
	}
	for speaker := range sources {
		st.stems[speaker] = audio.New(rate)
	}

	var skipped []SkippedLine

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, ok := sources[ev.Speaker]
		if !ok {
			log.Warn("no voice assigned, line dropped", "speaker", ev.Speaker, "line", i+1)
			skipped = append(skipped, SkippedLine{Index: i, Speaker: ev.Speaker})
			continue
		}

		clip, err := src.ProduceClip(ctx, ev.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			skipped = append(skipped, SkippedLine{Index: i, Speaker: ev.Speaker, Reason: err})
			continue
		}
		if clip == nil || clip.Len() == 0 {
			skipped = append(skipped, SkippedLine{Index: i, Speaker: ev.Speaker})
			continue
		}

		if err := st.place(ev.Speaker, clip, gaps); err != nil {
			return nil, err
		}
	}

	if !st.placed {
		return nil, ErrEmptyResult
	}
	st.alignStems()

	return &Result{Full: st.full, Stems: st.stems, Skipped: skipped}, nil
}

// place appends one clip and its leading gap to every track, keeping
// the tracks time-aligned.
func (st *state) place(speaker string, clip *audio.Clip, gaps GapPolicy) error {
	gap := time.Duration(0)
	if st.placed {
		if st.last == speaker {
			gap = gaps.SameSpeaker
		} else {
			gap = gaps.SpeakerChange
		}
	}

	if gap > 0 {
		st.full.AppendSilence(gap)
		for _, stem := range st.stems {
			stem.AppendSilence(gap)
		}
		st.position += gap
	}

	if err := st.full.Append(clip); err != nil {
		return err
	}
	dur := clip.Duration()
	for sp, stem := range st.stems {
		if sp == speaker {
			if err := stem.Append(clip); err != nil {
				return err
			}
		} else {
			stem.AppendSilence(dur)
		}
	}

	st.position += dur
	st.last = speaker
	st.placed = true
	return nil
}

// alignStems enforces the timeline invariant: every stem is exactly as
// long as the full mix. Gap and clip appends keep them aligned to
// within rounding, so this pads the stragglers and defensively trims
// any overshoot.
func (st *state) alignStems() {
	n := st.full.Len()
	for _, stem := range st.stems {
		stem.PadTo(n)
		stem.TruncateTo(n)
	}
}
