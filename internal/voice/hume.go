package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vobble/studio/internal/audio"
)

const (
	humeEndpoint = "https://api.hume.ai/v0/tts"

	defaultHumeDescription = "Expressive delivery, clear articulation."
)

// HumeVoice configures a Hume-synthesized speaker. The voice is
// referenced either by id or by name plus library provider; the acting
// description carries performance direction instead of inline tags.
type HumeVoice struct {
	VoiceID         string `mapstructure:"voice_id"`
	VoiceName       string `mapstructure:"voice_name"`
	LibraryProvider string `mapstructure:"library_provider"`
	BaseDescription string `mapstructure:"base_description"`
	AutoHints       bool   `mapstructure:"auto_hints"`
}

// HumeProvider synthesizes clips through the Hume API.
type HumeProvider struct {
	client  *Client
	apiKey  string
	voice   HumeVoice
	rate    int
	baseURL string
}

// NewHumeProvider creates a Hume provider for one speaker. Missing
// credentials or voice references are configuration errors.
func NewHumeProvider(client *Client, apiKey string, v HumeVoice, sampleRate int) (*HumeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("hume: %w", ErrMissingAPIKey)
	}
	if v.VoiceID == "" && v.VoiceName == "" {
		return nil, fmt.Errorf("hume: %w", ErrMissingVoiceRef)
	}
	if v.VoiceID == "" && v.LibraryProvider == "" {
		v.LibraryProvider = "HUME_AI"
	}
	return &HumeProvider{
		client:  client,
		apiKey:  apiKey,
		voice:   v,
		rate:    sampleRate,
		baseURL: humeEndpoint,
	}, nil
}

// Kind implements Provider.
func (p *HumeProvider) Kind() Kind { return KindHume }

// humeResponse is the slice of the Hume response we consume.
type humeResponse struct {
	Generations []struct {
		Audio string `json:"audio"`
	} `json:"generations"`
}

// ProduceClip synthesizes one utterance. Hume text stays plain; the
// acting description, optionally extended with punctuation-derived
// emotion hints, carries the performance direction.
func (p *HumeProvider) ProduceClip(ctx context.Context, text string) (*audio.Clip, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	payload := map[string]any{
		"utterances": []map[string]any{{
			"text":        text,
			"description": buildDescription(p.voice.BaseDescription, text, p.voice.AutoHints),
			"voice":       p.voiceRef(),
		}},
		"format":           map[string]string{"type": "mp3"},
		"num_generations":  1,
		"split_utterances": false,
		"strip_headers":    true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"X-Hume-Api-Key": p.apiKey}
	data, err := withRetry(ctx, synthRetries, func(ctx context.Context) ([]byte, error) {
		return p.client.post(ctx, p.baseURL, headers, body)
	})
	if err != nil {
		log.Warn("Hume synthesis failed", "voice", p.voiceLabel(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLineSkipped, err)
	}

	var resp humeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed hume response: %w", ErrLineSkipped, err)
	}
	if len(resp.Generations) == 0 || resp.Generations[0].Audio == "" {
		return nil, fmt.Errorf("%w: hume response carried no audio", ErrLineSkipped)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Generations[0].Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: decode hume audio: %w", ErrLineSkipped, err)
	}
	clip, err := audio.DecodeMP3(raw, p.rate)
	if err != nil {
		log.Warn("Hume returned undecodable audio", "voice", p.voiceLabel(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLineSkipped, err)
	}
	return shapeClip(clip), nil
}

// voiceRef builds the voice reference object for the request payload.
func (p *HumeProvider) voiceRef() map[string]string {
	if p.voice.VoiceID != "" {
		return map[string]string{"id": p.voice.VoiceID}
	}
	return map[string]string{
		"name":     p.voice.VoiceName,
		"provider": p.voice.LibraryProvider,
	}
}

func (p *HumeProvider) voiceLabel() string {
	if p.voice.VoiceID != "" {
		return p.voice.VoiceID
	}
	return p.voice.VoiceName
}

// buildDescription folds an optional emotion hint into the base acting
// description.
func buildDescription(base, line string, autoHints bool) string {
	base = strings.TrimSpace(base)
	if !autoHints {
		if base == "" {
			return defaultHumeDescription
		}
		return base
	}
	hint := emotionHint(line)
	if hint == "" {
		if base == "" {
			return defaultHumeDescription
		}
		return base
	}
	if base != "" {
		return fmt.Sprintf("%s Emotion hint: %s.", base, hint)
	}
	return fmt.Sprintf("Expressive delivery. Emotion hint: %s.", hint)
}

// emotionHint derives a coarse delivery hint from punctuation. This is
// deliberately crude; precise prosody modeling is out of scope.
func emotionHint(text string) string {
	t := strings.TrimSpace(text)
	switch {
	case strings.Count(t, "!") >= 2:
		return "loud, excited"
	case strings.Contains(t, "!"):
		return "excited"
	case strings.HasSuffix(t, "?"):
		return "curious, questioning"
	default:
		return ""
	}
}
