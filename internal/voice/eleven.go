package voice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vobble/studio/internal/audio"
	"github.com/vobble/studio/internal/script"
)

const (
	elevenEndpoint = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenModelID  = "eleven_v3"
)

// ElevenVoice configures an ElevenLabs-synthesized speaker.
type ElevenVoice struct {
	VoiceID   string `mapstructure:"voice_id"`
	VoiceType string `mapstructure:"voice_type"`
}

// ElevenProvider synthesizes clips through the ElevenLabs API.
type ElevenProvider struct {
	client  *Client
	apiKey  string
	voiceID string
	profile Profile
	rate    int
	baseURL string
}

// NewElevenProvider creates an ElevenLabs provider for one speaker.
// Missing credentials or voice references are configuration errors.
func NewElevenProvider(client *Client, apiKey string, v ElevenVoice, sampleRate int) (*ElevenProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs: %w", ErrMissingAPIKey)
	}
	if v.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs: %w", ErrMissingVoiceRef)
	}
	profile, err := ProfileForVoiceType(v.VoiceType)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}
	return &ElevenProvider{
		client:  client,
		apiKey:  apiKey,
		voiceID: v.VoiceID,
		profile: profile,
		rate:    sampleRate,
		baseURL: elevenEndpoint,
	}, nil
}

// Kind implements Provider.
func (p *ElevenProvider) Kind() Kind { return KindElevenLabs }

// ProduceClip synthesizes one utterance. The text is cadence-normalized
// first; a line that normalizes to nothing is skipped.
func (p *ElevenProvider) ProduceClip(ctx context.Context, text string) (*audio.Clip, error) {
	t := script.NormalizeCadence(text)
	if t == "" {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"text":           t,
		"model_id":       elevenModelID,
		"voice_settings": p.profile,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?output_format=mp3_44100_128", p.baseURL, p.voiceID)
	headers := map[string]string{
		"xi-api-key": p.apiKey,
		"Accept":     "audio/mpeg",
	}

	data, err := withRetry(ctx, synthRetries, func(ctx context.Context) ([]byte, error) {
		return p.client.post(ctx, url, headers, body)
	})
	if err != nil {
		log.Warn("ElevenLabs synthesis failed", "voice", p.voiceID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLineSkipped, err)
	}

	clip, err := audio.DecodeMP3(data, p.rate)
	if err != nil {
		log.Warn("ElevenLabs returned undecodable audio", "voice", p.voiceID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLineSkipped, err)
	}
	return shapeClip(clip), nil
}
