// Package voice maps speakers to voices and produces one audio clip
// per utterance, from one of three sources: the ElevenLabs synthesis
// API, the Hume synthesis API, or takes cut from a pre-recorded file.
package voice

import (
	"context"
	"errors"
	"time"

	"github.com/vobble/studio/internal/audio"
)

// Shaping applied to every synthesized clip before it reaches the
// timeline.
const (
	clipFadeIn  = 20 * time.Millisecond
	clipFadeOut = 40 * time.Millisecond
	clipTailPad = 60 * time.Millisecond
)

// Synthesis call budget. Transient failures are retried with no
// backoff; the budget is per utterance and no retry state is shared
// between calls.
const (
	synthRetries = 3
	synthTimeout = 30 * time.Second
)

// Provider produces the audio clip for one utterance of its speaker.
//
// A nil clip with a nil error means the utterance has nothing to
// synthesize (for example, it was only stage directions) and should be
// skipped. Calls are independent; implementations hold no state shared
// across runs, though the recorded provider advances its take cursor
// per call and therefore must see its speaker's utterances in script
// order.
type Provider interface {
	// ProduceClip returns the clip for one utterance.
	ProduceClip(ctx context.Context, text string) (*audio.Clip, error)

	// Kind identifies the provider variant.
	Kind() Kind
}

// Kind tags the voice-source variant of an assignment.
type Kind string

const (
	KindElevenLabs Kind = "elevenlabs"
	KindHume       Kind = "hume"
	KindRecorded   Kind = "recorded"
)

// Synthesized reports whether the kind calls a network synthesis
// backend.
func (k Kind) Synthesized() bool {
	return k == KindElevenLabs || k == KindHume
}

// Configuration errors, detected before any synthesis work begins.
var (
	ErrMissingAPIKey       = errors.New("missing synthesis API key")
	ErrMissingVoiceRef     = errors.New("missing voice reference")
	ErrUnknownProviderKind = errors.New("unknown voice provider kind")
	ErrNoTakes             = errors.New("recording segmented into zero usable takes")
	ErrEmptyTakeSequence   = errors.New("recorded voice has an empty take sequence")
)

// ErrLineSkipped wraps per-line provider failures that degrade to a
// skipped line instead of aborting the run.
var ErrLineSkipped = errors.New("line skipped")

// transientError marks a failure worth retrying (network error,
// timeout).
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// isTransient reports whether err should be retried.
func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// withRetry runs call up to attempts times, returning the first
// success. Only transient failures are retried; a permanent failure is
// returned immediately. There is no backoff between attempts.
func withRetry(ctx context.Context, attempts int, call func(context.Context) ([]byte, error)) ([]byte, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := call(ctx)
		if err == nil {
			return data, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// shapeClip applies the standard fades and tail pad to a freshly
// synthesized clip.
func shapeClip(c *audio.Clip) *audio.Clip {
	c.FadeIn(clipFadeIn)
	c.FadeOut(clipFadeOut)
	c.AppendSilence(clipTailPad)
	return c
}
