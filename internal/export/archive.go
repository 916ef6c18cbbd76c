// Package export renders an assembled timeline into its delivery
// artifact: a ZIP archive holding the full-episode WAV and one WAV
// stem per speaker.
package export

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vobble/studio/internal/audio"
	"github.com/vobble/studio/internal/mix"
)

// FullMixName is the fixed top-level filename of the episode mix
// inside the archive.
const FullMixName = "episode_full.wav"

var nonFilename = regexp.MustCompile(`[^a-z0-9_\-]+`)

// stripMarks removes combining marks after NFD decomposition, so
// accented speaker names transliterate instead of vanishing.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SafeName transliterates a speaker id into a filesystem-safe stem
// name: lowercase, diacritics stripped, non-alphanumeric runs collapsed
// to "_", trimmed.
func SafeName(id string) string {
	s := strings.ToLower(id)
	if t, _, err := transform.String(stripMarks, s); err == nil {
		s = t
	}
	return strings.Trim(nonFilename.ReplaceAllString(s, "_"), "_")
}

// StemName returns the archive path of a speaker's stem.
func StemName(speaker string) string {
	name := SafeName(speaker)
	if name == "" {
		name = "speaker"
	}
	return fmt.Sprintf("stems/%s_stem.wav", name)
}

// WriteArchive writes the full mix and all stems as WAVs inside a ZIP
// archive. Stems are written in sorted speaker order so the archive
// layout is deterministic.
func WriteArchive(w io.Writer, res *mix.Result) error {
	zw := zip.NewWriter(w)

	if err := writeWAV(zw, FullMixName, res.Full); err != nil {
		return err
	}

	speakers := make([]string, 0, len(res.Stems))
	for sp := range res.Stems {
		speakers = append(speakers, sp)
	}
	sort.Strings(speakers)

	for _, sp := range speakers {
		if err := writeWAV(zw, StemName(sp), res.Stems[sp]); err != nil {
			return err
		}
	}
	return zw.Close()
}

// writeWAV encodes one clip into a deflated archive entry.
func writeWAV(zw *zip.Writer, name string, c *audio.Clip) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	counter := &countingWriter{w: f}
	if err := audio.EncodeWAV(counter, c); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	log.Debug("archived track", "name", name, "duration", c.Duration(),
		"size", humanize.Bytes(uint64(counter.n)))
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
