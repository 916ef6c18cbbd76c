package script

import (
	"regexp"
	"strings"
)

// Pause tags that synthesized-voice backends understand. Any other
// bracketed tag is a stage direction and is stripped before synthesis.
var allowedPauseTags = map[string]struct{}{
	"[pause]":       {},
	"[short pause]": {},
	"[long pause]":  {},
}

var (
	bracketTag = regexp.MustCompile(`\[[^\]]+\]`)
	pauseTail  = regexp.MustCompile(`(\[short pause\]|\[pause\]|\[long pause\])\s*$`)
)

// NormalizeCadence rewrites utterance text to stabilize synthesis
// pacing. Unknown bracketed tags are removed, terminal punctuation is
// ensured, and a trailing "[short pause]" marker is appended unless the
// text already ends with an allowed pause tag. An empty result means
// the line has nothing to synthesize and should be skipped.
func NormalizeCadence(text string) string {
	t := stripUnknownTags(strings.TrimSpace(text))
	if t == "" {
		return ""
	}
	if pauseTail.MatchString(t) {
		return t
	}
	if !strings.HasSuffix(t, ".") && !strings.HasSuffix(t, "!") &&
		!strings.HasSuffix(t, "?") && !strings.HasSuffix(t, ",") {
		t += "."
	}
	return t + " [short pause]"
}

// stripUnknownTags removes bracketed tags that are not allowed pause
// markers, preserving allowed tags verbatim.
func stripUnknownTags(s string) string {
	out := bracketTag.ReplaceAllStringFunc(s, func(tag string) string {
		if _, ok := allowedPauseTags[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return tag
		}
		return ""
	})
	return strings.TrimSpace(collapseSpaces(out))
}

// collapseSpaces folds runs of spaces left behind by tag removal.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
