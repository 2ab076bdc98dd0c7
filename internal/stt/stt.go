// Package stt talks to the remote speech-to-text service. Speech
// recognition, diarization and audio-event tagging all happen on the
// service side; this package only uploads audio and parses the
// word-level results.
package stt

import "context"

// WordToken is the atomic unit returned by the service: one recognized
// word or phrase with its start time and optional speaker attribution.
// Token texts already include any necessary whitespace.
type WordToken struct {
	Text         string
	StartSeconds float64 // relative to the submitted audio
	SpeakerID    string  // empty when the service could not attribute a speaker
}

// Options mirrors the service-side transcription switches.
type Options struct {
	Diarize        bool
	TagAudioEvents bool
	NumSpeakers    int    // expected speaker count hint; 0 leaves it to the service
	OutputFormat   string // response format requested from the service
	LanguageHint   string // optional ISO language code
}

// Service is the remote transcription collaborator. Implementations
// return the chronological word tokens recognized in the given file.
type Service interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) ([]WordToken, error)
}
