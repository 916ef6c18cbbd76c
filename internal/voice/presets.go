package voice

import "fmt"

// Profile is the ElevenLabs voice-settings payload for a coarse voice
// type.
type Profile struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Voice-type preset table. Keys are the coarse voice-type tags offered
// at character setup.
var voiceTypeProfiles = map[string]Profile{
	"adult_male":   {Stability: 0.0, SimilarityBoost: 0.88, Style: 1.0, UseSpeakerBoost: true},
	"adult_female": {Stability: 0.50, SimilarityBoost: 0.90, Style: 0.80, UseSpeakerBoost: true},
	"male_kid":     {Stability: 0.50, SimilarityBoost: 0.80, Style: 0.90, UseSpeakerBoost: true},
	"female_kid":   {Stability: 0.50, SimilarityBoost: 0.78, Style: 0.95, UseSpeakerBoost: false},
}

// ProfileForVoiceType returns the preset profile for a voice-type tag.
func ProfileForVoiceType(tag string) (Profile, error) {
	p, ok := voiceTypeProfiles[tag]
	if !ok {
		return Profile{}, fmt.Errorf("unknown voice type %q (want one of %v)", tag, VoiceTypes())
	}
	return p, nil
}

// VoiceTypes returns the known voice-type tags in a stable order.
func VoiceTypes() []string {
	return []string{"adult_male", "adult_female", "male_kid", "female_kid"}
}
