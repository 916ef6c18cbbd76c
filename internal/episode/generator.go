package episode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/vobble/studio/internal/audio"
	"github.com/vobble/studio/internal/export"
	"github.com/vobble/studio/internal/mix"
	"github.com/vobble/studio/internal/script"
	"github.com/vobble/studio/internal/voice"
)

// Summary reports the outcome of a completed run.
type Summary struct {
	Lines       int               // parsed script events
	Placed      int               // events that contributed audio
	Skipped     []mix.SkippedLine // events that did not
	Duration    time.Duration     // full mix length
	Speakers    []string          // speakers with stems, sorted
	ArchiveSize int64
	OutPath     string
}

// Generator runs one episode generation. Each run owns its own
// providers, timeline and output; concurrent runs share nothing but
// read-only configuration.
type Generator struct {
	cfg   Config
	creds Credentials
}

// NewGenerator creates a generator for a validated configuration.
func NewGenerator(cfg Config, creds Credentials) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, creds: creds}, nil
}

// Run generates the episode for the given script text and writes the
// ZIP archive to outPath. The archive is written to a temporary file
// and renamed into place only on success; a fatal error never leaves a
// partial artifact behind.
func (g *Generator) Run(ctx context.Context, scriptText, outPath string) (*Summary, error) {
	events := script.NewParser().Parse(scriptText)
	if len(events) == 0 {
		return nil, fmt.Errorf("no dialogue detected in script")
	}
	characters := script.DetectCharacters(events)
	log.Info("script parsed", "lines", len(events), "characters", len(characters))

	providers, err := g.buildProviders(ctx, characters)
	if err != nil {
		return nil, err
	}
	for _, ch := range characters {
		if _, ok := providers[ch]; !ok {
			log.Warn("speaker has no voice assignment, lines will be dropped", "speaker", ch)
		}
	}

	sources := g.sources(ctx, events, providers)

	res, err := mix.Build(ctx, events, sources, g.cfg.Gaps, g.cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	size, err := writeArchive(outPath, res)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Lines:       len(events),
		Placed:      len(events) - len(res.Skipped),
		Skipped:     res.Skipped,
		Duration:    res.Full.Duration(),
		Speakers:    sortedSpeakers(res),
		ArchiveSize: size,
		OutPath:     outPath,
	}
	logSummary(sum)
	return sum, nil
}

// buildProviders constructs one provider per assigned speaker that has
// dialogue. All configuration problems, including recordings that
// segment into zero takes, surface here before any synthesis call.
func (g *Generator) buildProviders(ctx context.Context, characters []string) (map[string]voice.Provider, error) {
	client := voice.NewClient(g.cfg.RateLimit)
	providers := make(map[string]voice.Provider)

	for _, speaker := range characters {
		a, ok := g.cfg.Speakers[speaker]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kind, err := a.Kind()
		if err != nil {
			return nil, fmt.Errorf("speaker %q: %w", speaker, err)
		}

		var p voice.Provider
		switch kind {
		case voice.KindElevenLabs:
			p, err = voice.NewElevenProvider(client, g.creds.ElevenAPIKey, a.ElevenLabs, g.cfg.SampleRate)
		case voice.KindHume:
			p, err = voice.NewHumeProvider(client, g.creds.HumeAPIKey, a.Hume, g.cfg.SampleRate)
		case voice.KindRecorded:
			p, err = g.buildRecorded(a.Recorded)
		}
		if err != nil {
			return nil, fmt.Errorf("speaker %q: %w", speaker, err)
		}
		providers[speaker] = p
	}
	return providers, nil
}

// buildRecorded decodes and segments a speaker's recording into its
// take library.
func (g *Generator) buildRecorded(v voice.RecordedVoice) (voice.Provider, error) {
	if v.File == "" {
		return nil, fmt.Errorf("recorded voice needs a file")
	}
	rec, err := audio.DecodeFile(v.File, g.cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	takes := audio.SplitTakes(rec, v.SegmentOptions())
	log.Info("recording segmented", "file", filepath.Base(v.File), "takes", len(takes))

	return voice.NewRecordedProvider(takes, voice.ParseTakeSequence(v.TakeSequence))
}

// writeArchive renders the result atomically: temp file first, rename
// on success.
func writeArchive(outPath string, res *mix.Result) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".episode-*.zip")
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteArchive(tmp, res); err != nil {
		tmp.Close()
		return 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	return info.Size(), nil
}

func sortedSpeakers(res *mix.Result) []string {
	speakers := make([]string, 0, len(res.Stems))
	for sp := range res.Stems {
		speakers = append(speakers, sp)
	}
	sort.Strings(speakers)
	return speakers
}

func logSummary(s *Summary) {
	log.Info("episode generated",
		"duration", s.Duration.Round(time.Millisecond),
		"lines", s.Lines,
		"placed", s.Placed,
		"skipped", len(s.Skipped),
		"stems", len(s.Speakers),
		"archive", s.OutPath,
		"size", humanize.Bytes(uint64(s.ArchiveSize)))
	for _, sk := range s.Skipped {
		if sk.Reason != nil {
			log.Warn("line skipped", "line", sk.Index+1, "speaker", sk.Speaker, "reason", sk.Reason)
		} else {
			log.Debug("line skipped (nothing to synthesize)", "line", sk.Index+1, "speaker", sk.Speaker)
		}
	}
}
