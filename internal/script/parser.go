// Package script parses plain-text episode scripts into ordered
// speaker/utterance events and prepares utterance text for synthesis.
package script

import (
	"regexp"
	"sort"
	"strings"
)

// Event is one utterance in script order. Events are immutable once
// produced; their order in the parsed sequence is the playback order.
type Event struct {
	Speaker string // normalized speaker id (trimmed, lowercased)
	Text    string // dialogue text, block lines joined with single spaces
}

// Parser turns raw script text into an ordered sequence of events.
type Parser struct {
	speakerLine *regexp.Regexp

	// Maximum speaker name length accepted before the colon.
	maxNameLen int
}

// NewParser creates a script parser.
func NewParser() *Parser {
	return &Parser{
		speakerLine: regexp.MustCompile(`^\s*([^:]{1,60})\s*:\s*(.*)$`),
		maxNameLen:  60,
	}
}

// NormalizeName normalizes a speaker name into a speaker id.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Parse extracts speaker/utterance events from raw script text.
//
// Two shapes are accepted. Single-line form puts the whole utterance on
// the speaker line:
//
//	ann: Hello there
//
// Block form opens with a speaker line and accumulates following lines
// until a blank line or the next speaker line:
//
//	ann:
//	Hello
//	there
//
// Production cues (lines starting with "sfx:" or "music:") and pure
// bracketed performance directions ("[warm, loud]") are discarded.
// Lines before any speaker line are dropped. Parse is a pure function:
// identical input always yields an identical event sequence.
func (p *Parser) Parse(raw string) []Event {
	var (
		events   []Event
		speaker  string
		dialogue []string
	)

	flush := func() {
		if speaker == "" || len(dialogue) == 0 {
			dialogue = nil
			return
		}
		text := strings.TrimSpace(strings.Join(dialogue, " "))
		if text != "" {
			events = append(events, Event{Speaker: speaker, Text: text})
		}
		dialogue = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		stripped := strings.TrimSpace(line)

		if stripped == "" {
			flush()
			continue
		}
		if isProductionCue(stripped) {
			continue
		}
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			// Pure performance direction, not dialogue.
			continue
		}

		if m := p.speakerLine.FindStringSubmatch(line); m != nil {
			flush()
			speaker = NormalizeName(m[1])
			if after := strings.TrimSpace(m[2]); after != "" {
				dialogue = append(dialogue, after)
			}
			continue
		}

		if speaker != "" {
			dialogue = append(dialogue, stripped)
		}
	}
	flush()

	return events
}

// isProductionCue reports whether the stripped line is an sfx or music
// cue rather than dialogue.
func isProductionCue(stripped string) bool {
	l := strings.ToLower(stripped)
	return strings.HasPrefix(l, "sfx:") || strings.HasPrefix(l, "music:")
}

// DetectCharacters returns the distinct speaker ids present in events,
// sorted lexicographically.
func DetectCharacters(events []Event) []string {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		seen[ev.Speaker] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
