package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vobble/studio/internal/audio"
)

func newTestElevenProvider(t *testing.T, url string) *ElevenProvider {
	t.Helper()
	p, err := NewElevenProvider(NewClient(0), "test-key", ElevenVoice{
		VoiceID:   "voice-123",
		VoiceType: "adult_female",
	}, audio.SampleRate)
	if err != nil {
		t.Fatalf("NewElevenProvider: %v", err)
	}
	p.baseURL = url
	return p
}

func TestNewElevenProviderConfigErrors(t *testing.T) {
	client := NewClient(0)

	if _, err := NewElevenProvider(client, "", ElevenVoice{VoiceID: "v", VoiceType: "adult_male"}, audio.SampleRate); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key: err = %v, want ErrMissingAPIKey", err)
	}
	if _, err := NewElevenProvider(client, "k", ElevenVoice{VoiceType: "adult_male"}, audio.SampleRate); !errors.Is(err, ErrMissingVoiceRef) {
		t.Errorf("missing voice: err = %v, want ErrMissingVoiceRef", err)
	}
	if _, err := NewElevenProvider(client, "k", ElevenVoice{VoiceID: "v", VoiceType: "robot"}, audio.SampleRate); err == nil {
		t.Error("unknown voice type accepted")
	}
}

func TestElevenProviderRequestShape(t *testing.T) {
	var captured struct {
		Text          string  `json:"text"`
		ModelID       string  `json:"model_id"`
		VoiceSettings Profile `json:"voice_settings"`
	}
	var gotPath, gotKey, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("xi-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		// Provider treats non-2xx as a permanent skip, which is fine
		// here; the request shape is what is under test.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestElevenProvider(t, srv.URL)
	_, err := p.ProduceClip(context.Background(), "Hello")
	if !errors.Is(err, ErrLineSkipped) {
		t.Fatalf("err = %v, want ErrLineSkipped", err)
	}

	if gotPath != "/voice-123" {
		t.Errorf("path = %q, want /voice-123", gotPath)
	}
	if gotQuery != "output_format=mp3_44100_128" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q, want test-key", gotKey)
	}
	if captured.Text != "Hello. [short pause]" {
		t.Errorf("text = %q, want cadence-normalized form", captured.Text)
	}
	if captured.ModelID != elevenModelID {
		t.Errorf("model_id = %q, want %q", captured.ModelID, elevenModelID)
	}
	if captured.VoiceSettings.SimilarityBoost != 0.90 {
		t.Errorf("voice_settings = %+v, want adult_female preset", captured.VoiceSettings)
	}
}

func TestElevenProviderSkipsEmptyLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("synthesis called for an empty line")
	}))
	defer srv.Close()

	p := newTestElevenProvider(t, srv.URL)
	clip, err := p.ProduceClip(context.Background(), "[only a direction]")
	if err != nil || clip != nil {
		t.Errorf("ProduceClip = (%v, %v), want (nil, nil) skip", clip, err)
	}
}

func TestElevenProviderPermanentErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "voice not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestElevenProvider(t, srv.URL)
	_, err := p.ProduceClip(context.Background(), "Hello")
	if !errors.Is(err, ErrLineSkipped) {
		t.Fatalf("err = %v, want ErrLineSkipped", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not surface the status", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-2xx)", calls.Load())
	}
}

func TestElevenProviderTransientErrorRetried(t *testing.T) {
	// A server that closes connections produces transport errors,
	// which are transient and consume the whole retry budget.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	}))
	defer srv.Close()

	p := newTestElevenProvider(t, srv.URL)
	_, err := p.ProduceClip(context.Background(), "Hello")
	if !errors.Is(err, ErrLineSkipped) {
		t.Fatalf("err = %v, want ErrLineSkipped", err)
	}
	if calls.Load() != synthRetries {
		t.Errorf("calls = %d, want %d", calls.Load(), synthRetries)
	}
}
