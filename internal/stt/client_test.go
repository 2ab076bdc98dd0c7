package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxkit/scribe/internal/errs"
)

func audioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestTranscribeParsesWords(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech-to-text" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotForm = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotForm[k] = v[0]
		}
		if _, ok := r.MultipartForm.File["file"]; !ok {
			t.Errorf("audio file part missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"language_code": "en",
			"text": "Hi there",
			"words": [
				{"text": "Hi ", "start": 0.0, "end": 0.4, "type": "word", "speaker_id": "speaker_0"},
				{"text": "there", "start": 0.4, "end": 0.9, "type": "word", "speaker_id": "speaker_0"},
				{"text": "(laughs)", "start": 1.2, "end": 1.8, "type": "audio_event"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	tokens, err := c.Transcribe(context.Background(), audioFixture(t), Options{
		Diarize:        true,
		TagAudioEvents: true,
		NumSpeakers:    2,
		OutputFormat:   "json",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].Text != "Hi " || tokens[0].SpeakerID != "speaker_0" || tokens[0].StartSeconds != 0 {
		t.Errorf("first token mismatch: %+v", tokens[0])
	}
	if tokens[2].SpeakerID != "" {
		t.Errorf("audio event token should have empty speaker, got %q", tokens[2].SpeakerID)
	}

	if gotForm["model_id"] != "scribe_v1" {
		t.Errorf("model_id = %q", gotForm["model_id"])
	}
	if gotForm["diarize"] != "true" || gotForm["tag_audio_events"] != "true" {
		t.Errorf("option fields not forwarded: %v", gotForm)
	}
	if gotForm["num_speakers"] != "2" {
		t.Errorf("num_speakers = %q", gotForm["num_speakers"])
	}
}

func TestTranscribeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"}, zerolog.Nop())
	_, err := c.Transcribe(context.Background(), audioFixture(t), Options{})

	var se *errs.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %T: %v", err, err)
	}
	if se.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", se.Status)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://localhost:1", APIKey: "k"}, zerolog.Nop())
	_, err := c.Transcribe(context.Background(), "/does/not/exist.mp3", Options{})

	// A local file problem must stay distinguishable from a service one.
	var fe *errs.FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError, got %T: %v", err, err)
	}
	var se *errs.ServiceError
	if errors.As(err, &se) {
		t.Errorf("local file error must not be a ServiceError")
	}
}
