package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vobble/studio/internal/audio"
)

func TestNewHumeProviderConfigErrors(t *testing.T) {
	client := NewClient(0)

	if _, err := NewHumeProvider(client, "", HumeVoice{VoiceID: "v"}, audio.SampleRate); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key: err = %v, want ErrMissingAPIKey", err)
	}
	if _, err := NewHumeProvider(client, "k", HumeVoice{}, audio.SampleRate); !errors.Is(err, ErrMissingVoiceRef) {
		t.Errorf("missing voice: err = %v, want ErrMissingVoiceRef", err)
	}
}

func TestHumeProviderDefaultsLibraryProvider(t *testing.T) {
	p, err := NewHumeProvider(NewClient(0), "k", HumeVoice{VoiceName: "Narrator"}, audio.SampleRate)
	if err != nil {
		t.Fatalf("NewHumeProvider: %v", err)
	}
	ref := p.voiceRef()
	if ref["provider"] != "HUME_AI" {
		t.Errorf("library provider = %q, want HUME_AI default", ref["provider"])
	}
	if ref["name"] != "Narrator" {
		t.Errorf("name = %q, want Narrator", ref["name"])
	}
}

func TestHumeProviderVoiceRefByID(t *testing.T) {
	p, err := NewHumeProvider(NewClient(0), "k", HumeVoice{VoiceID: "abc"}, audio.SampleRate)
	if err != nil {
		t.Fatalf("NewHumeProvider: %v", err)
	}
	ref := p.voiceRef()
	if ref["id"] != "abc" || len(ref) != 1 {
		t.Errorf("voiceRef = %v, want id-only reference", ref)
	}
}

func TestHumeProviderRequestShape(t *testing.T) {
	var payload struct {
		Utterances []struct {
			Text        string            `json:"text"`
			Description string            `json:"description"`
			Voice       map[string]string `json:"voice"`
		} `json:"utterances"`
		Format          map[string]string `json:"format"`
		NumGenerations  int               `json:"num_generations"`
		SplitUtterances bool              `json:"split_utterances"`
	}
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Hume-Api-Key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewHumeProvider(NewClient(0), "hume-key", HumeVoice{
		VoiceID:         "abc",
		BaseDescription: "Dry narrator.",
		AutoHints:       true,
	}, audio.SampleRate)
	if err != nil {
		t.Fatalf("NewHumeProvider: %v", err)
	}
	p.baseURL = srv.URL

	if _, err := p.ProduceClip(context.Background(), "Watch out!"); !errors.Is(err, ErrLineSkipped) {
		t.Fatalf("err = %v, want ErrLineSkipped", err)
	}

	if gotKey != "hume-key" {
		t.Errorf("X-Hume-Api-Key = %q", gotKey)
	}
	if len(payload.Utterances) != 1 {
		t.Fatalf("utterances = %d, want 1", len(payload.Utterances))
	}
	u := payload.Utterances[0]
	if u.Text != "Watch out!" {
		t.Errorf("text = %q, want plain un-normalized line", u.Text)
	}
	if u.Description != "Dry narrator. Emotion hint: excited." {
		t.Errorf("description = %q", u.Description)
	}
	if u.Voice["id"] != "abc" {
		t.Errorf("voice = %v", u.Voice)
	}
	if payload.Format["type"] != "mp3" || payload.NumGenerations != 1 || payload.SplitUtterances {
		t.Errorf("payload envelope = %+v", payload)
	}
}

func TestHumeProviderMalformedResponseSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"generations": []}`)
	}))
	defer srv.Close()

	p, err := NewHumeProvider(NewClient(0), "k", HumeVoice{VoiceID: "abc"}, audio.SampleRate)
	if err != nil {
		t.Fatalf("NewHumeProvider: %v", err)
	}
	p.baseURL = srv.URL

	if _, err := p.ProduceClip(context.Background(), "Hello"); !errors.Is(err, ErrLineSkipped) {
		t.Errorf("err = %v, want ErrLineSkipped on empty generations", err)
	}
}

func TestBuildDescription(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		line      string
		autoHints bool
		want      string
	}{
		{
			name: "no base no hints",
			line: "Hello.",
			want: defaultHumeDescription,
		},
		{
			name:      "hints disabled keeps base",
			base:      "Gravelly.",
			line:      "Watch out!",
			autoHints: false,
			want:      "Gravelly.",
		},
		{
			name:      "double exclamation",
			base:      "Gravelly.",
			line:      "Run!! Now!!",
			autoHints: true,
			want:      "Gravelly. Emotion hint: loud, excited.",
		},
		{
			name:      "question",
			line:      "Who goes there?",
			autoHints: true,
			want:      "Expressive delivery. Emotion hint: curious, questioning.",
		},
		{
			name:      "no punctuation falls back to base",
			base:      "Calm.",
			line:      "Fine",
			autoHints: true,
			want:      "Calm.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDescription(tt.base, tt.line, tt.autoHints); got != tt.want {
				t.Errorf("buildDescription = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmotionHint(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Run!! Now!!", "loud, excited"},
		{"Watch out!", "excited"},
		{"Who goes there?", "curious, questioning"},
		{"Nothing special.", ""},
	}
	for _, tt := range tests {
		if got := emotionHint(tt.line); got != tt.want {
			t.Errorf("emotionHint(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
