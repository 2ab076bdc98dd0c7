package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxkit/scribe/internal/errs"
)

// ClientConfig configures the speech-to-text HTTP client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	ModelID string        // default "scribe_v1"
	Timeout time.Duration // default 10 minutes; long audio uploads are slow
}

// Client is a Service backed by an ElevenLabs-compatible
// speech-to-text HTTP API.
type Client struct {
	cfg    ClientConfig
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a speech-to-text client.
func NewClient(cfg ClientConfig, log zerolog.Logger) *Client {
	if cfg.ModelID == "" {
		cfg.ModelID = "scribe_v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "stt").Logger(),
	}
}

// transcribeResponse mirrors the JSON shape returned by the service.
type transcribeResponse struct {
	LanguageCode string `json:"language_code"`
	Text         string `json:"text"`
	Words        []struct {
		Text      string  `json:"text"`
		Start     float64 `json:"start"`
		End       float64 `json:"end"`
		Type      string  `json:"type"`
		SpeakerID string  `json:"speaker_id"`
	} `json:"words"`
}

// Transcribe uploads the audio file and returns the recognized word
// tokens in chronological order. Service failures surface as a typed
// ServiceError distinguishable from local file errors. There is no
// retry: a failed call fails the run.
func (c *Client) Transcribe(ctx context.Context, audioPath string, opts Options) ([]WordToken, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, errs.NewFileError("open", audioPath, err)
	}
	defer f.Close()

	// Stream the multipart body through a pipe so the whole segment is
	// never buffered in memory.
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()

		part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			errCh <- fmt.Errorf("create form file: %w", err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			errCh <- fmt.Errorf("copy audio data: %w", err)
			return
		}
		_ = writer.WriteField("model_id", c.cfg.ModelID)
		_ = writer.WriteField("diarize", strconv.FormatBool(opts.Diarize))
		_ = writer.WriteField("tag_audio_events", strconv.FormatBool(opts.TagAudioEvents))
		if opts.NumSpeakers > 0 {
			_ = writer.WriteField("num_speakers", strconv.Itoa(opts.NumSpeakers))
		}
		if opts.OutputFormat != "" {
			_ = writer.WriteField("output_format", opts.OutputFormat)
		}
		if opts.LanguageHint != "" {
			_ = writer.WriteField("language_code", opts.LanguageHint)
		}

		errCh <- writer.Close()
	}()

	url := c.cfg.BaseURL + "/v1/speech-to-text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &errs.ServiceError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.ServiceError{Err: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The service may answer without draining the upload, so the
		// writer goroutine's result is only meaningful on success.
		return nil, &errs.ServiceError{Status: resp.StatusCode, Body: truncate(body, 300)}
	}
	if writeErr := <-errCh; writeErr != nil {
		return nil, fmt.Errorf("multipart write: %w", writeErr)
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.ServiceError{Err: fmt.Errorf("decode response: %w", err)}
	}

	tokens := make([]WordToken, len(parsed.Words))
	for i, w := range parsed.Words {
		tokens[i] = WordToken{
			Text:         w.Text,
			StartSeconds: w.Start,
			SpeakerID:    w.SpeakerID,
		}
	}

	c.log.Debug().
		Str("file", filepath.Base(audioPath)).
		Str("language", parsed.LanguageCode).
		Int("tokens", len(tokens)).
		Dur("took", time.Since(started)).
		Msg("transcription call finished")
	return tokens, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
