// Package episode orchestrates one episode-generation run: loading
// configuration, validating it before any synthesis, walking the
// script through the timeline mixer and exporting the archive.
package episode

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/vobble/studio/internal/audio"
	"github.com/vobble/studio/internal/mix"
	"github.com/vobble/studio/internal/voice"
)

// Assignment binds one speaker to a voice source. Provider selects the
// variant; only the matching sub-config is read.
type Assignment struct {
	Provider   string              `mapstructure:"provider"`
	ElevenLabs voice.ElevenVoice   `mapstructure:"elevenlabs"`
	Hume       voice.HumeVoice     `mapstructure:"hume"`
	Recorded   voice.RecordedVoice `mapstructure:"recorded"`
}

// Kind returns the assignment's provider kind.
func (a Assignment) Kind() (voice.Kind, error) {
	switch voice.Kind(strings.ToLower(strings.TrimSpace(a.Provider))) {
	case voice.KindElevenLabs:
		return voice.KindElevenLabs, nil
	case voice.KindHume:
		return voice.KindHume, nil
	case voice.KindRecorded:
		return voice.KindRecorded, nil
	default:
		return "", fmt.Errorf("%w: %q", voice.ErrUnknownProviderKind, a.Provider)
	}
}

// Config is the explicit value object handed to a run. The core never
// reads configuration from any ambient store; everything it needs is
// here or in Credentials.
type Config struct {
	SampleRate int                   `mapstructure:"sample_rate"`
	Gaps       mix.GapPolicy         `mapstructure:"gaps"`
	Speakers   map[string]Assignment `mapstructure:"speakers"`

	// Prefetch is the number of synthesis calls allowed in flight
	// ahead of the mixing pass. Zero or one disables prefetching.
	Prefetch int `mapstructure:"prefetch"`

	// RateLimit caps synthesis requests per second. Zero disables.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// DefaultConfig returns a Config with standard pacing and format.
func DefaultConfig() Config {
	return Config{
		SampleRate: audio.SampleRate,
		Gaps:       mix.DefaultGapPolicy(),
		Speakers:   map[string]Assignment{},
		Prefetch:   4,
		RateLimit:  2,
	}
}

// LoadConfig reads an episode configuration file (YAML) over the
// defaults. Speaker keys are normalized so they join against parsed
// speaker ids.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read episode config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse episode config: %w", err)
	}

	normalized := make(map[string]Assignment, len(cfg.Speakers))
	for name, a := range cfg.Speakers {
		normalized[strings.ToLower(strings.TrimSpace(name))] = a
	}
	cfg.Speakers = normalized

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks run-level settings. Per-speaker voice configuration
// is validated when providers are built, still before any synthesis.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Gaps.SameSpeaker < 0 || c.Gaps.SpeakerChange < 0 {
		return fmt.Errorf("gap durations cannot be negative")
	}
	if c.Prefetch < 0 {
		return fmt.Errorf("prefetch cannot be negative, got %d", c.Prefetch)
	}
	if len(c.Speakers) == 0 {
		return fmt.Errorf("no speakers configured")
	}
	for name, a := range c.Speakers {
		if _, err := a.Kind(); err != nil {
			return fmt.Errorf("speaker %q: %w", name, err)
		}
	}
	return nil
}

// Credentials holds the synthesis API keys, read from the environment.
// They are required only for the provider kinds an episode actually
// uses.
type Credentials struct {
	ElevenAPIKey string `env:"ELEVEN_API_KEY"`
	HumeAPIKey   string `env:"HUME_API_KEY"`
}

// LoadCredentials reads credentials from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	return c, nil
}
