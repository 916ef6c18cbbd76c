package audio

import (
	"math"
	"time"
)

// Segmentation defaults, tuned for voice takes recorded in one pass.
const (
	DefaultMinSilence  = 300 * time.Millisecond
	DefaultThresholdDb = -38.0
	DefaultKeepSilence = 100 * time.Millisecond

	// Fragments shorter than this are treated as noise, not takes.
	minTakeLength = 60 * time.Millisecond

	takeFadeIn  = 5 * time.Millisecond
	takeFadeOut = 10 * time.Millisecond

	// Silence detection granularity.
	silenceFrame = 10 * time.Millisecond
)

// SegmentOptions control how a recording is split into takes.
type SegmentOptions struct {
	MinSilence  time.Duration // minimum silence run that splits takes
	ThresholdDb float64       // level (dBFS) below which a frame is silent
	KeepSilence time.Duration // silence padding kept on each side of a take
}

// DefaultSegmentOptions returns the segmentation defaults.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{
		MinSilence:  DefaultMinSilence,
		ThresholdDb: DefaultThresholdDb,
		KeepSilence: DefaultKeepSilence,
	}
}

// SplitTakes splits a recording into silence-delimited takes, in
// temporal order. Silence runs of at least MinSilence whose level stays
// below ThresholdDb delimit takes; KeepSilence of padding is retained
// at each boundary. Fragments shorter than 60ms are discarded, and each
// retained take gets a short fade on both ends to avoid clicks.
//
// The returned order defines the 1-based take index space used by
// recorded-voice take sequences.
func SplitTakes(rec *Clip, opts SegmentOptions) []*Clip {
	if rec == nil || len(rec.Samples) == 0 {
		return nil
	}

	frame := DurationToSamples(silenceFrame, rec.Rate)
	if frame <= 0 {
		frame = 1
	}
	silent := silentFrames(rec, frame, opts.ThresholdDb)

	minFrames := DurationToSamples(opts.MinSilence, rec.Rate) / frame
	if minFrames < 1 {
		minFrames = 1
	}
	runs := silenceRuns(silent, minFrames)

	keep := DurationToSamples(opts.KeepSilence, rec.Rate)
	minTake := DurationToSamples(minTakeLength, rec.Rate)

	var takes []*Clip
	for _, span := range voicedSpans(runs, len(silent)) {
		start := span[0]*frame - keep
		end := span[1] * frame
		if end > len(rec.Samples) {
			end = len(rec.Samples)
		}
		end += keep

		take := rec.Slice(start, end)
		if take.Len() < minTake {
			continue
		}
		take.FadeIn(takeFadeIn)
		take.FadeOut(takeFadeOut)
		takes = append(takes, take)
	}
	return takes
}

// silentFrames classifies each analysis frame by RMS level against the
// dBFS threshold.
func silentFrames(rec *Clip, frame int, thresholdDb float64) []bool {
	n := (len(rec.Samples) + frame - 1) / frame
	silent := make([]bool, n)
	for i := 0; i < n; i++ {
		from := i * frame
		to := from + frame
		if to > len(rec.Samples) {
			to = len(rec.Samples)
		}
		silent[i] = frameDb(rec.Samples[from:to]) < thresholdDb
	}
	return silent
}

// frameDb returns the RMS level of a frame in dBFS. An all-zero frame
// reports an arbitrarily low level.
func frameDb(samples []int16) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/(maxSample+1))
}

// silenceRuns finds runs of silent frames at least minFrames long,
// returned as [start, end) frame index pairs.
func silenceRuns(silent []bool, minFrames int) [][2]int {
	var runs [][2]int
	start := -1
	for i, s := range silent {
		if s && start < 0 {
			start = i
		}
		if !s && start >= 0 {
			if i-start >= minFrames {
				runs = append(runs, [2]int{start, i})
			}
			start = -1
		}
	}
	if start >= 0 && len(silent)-start >= minFrames {
		runs = append(runs, [2]int{start, len(silent)})
	}
	return runs
}

// voicedSpans returns the frame spans between qualifying silence runs,
// as [start, end) frame index pairs.
func voicedSpans(runs [][2]int, total int) [][2]int {
	var spans [][2]int
	pos := 0
	for _, run := range runs {
		if run[0] > pos {
			spans = append(spans, [2]int{pos, run[0]})
		}
		pos = run[1]
	}
	if pos < total {
		spans = append(spans, [2]int{pos, total})
	}
	return spans
}
