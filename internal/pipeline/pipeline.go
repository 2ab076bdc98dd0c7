// Package pipeline ties input resolution, segmentation, remote
// transcription and transcript assembly into the single sequential
// flow behind the CLI.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxkit/scribe/internal/errs"
	"github.com/voxkit/scribe/internal/media"
	"github.com/voxkit/scribe/internal/stt"
	"github.com/voxkit/scribe/internal/timefmt"
	"github.com/voxkit/scribe/internal/transcript"
	"github.com/voxkit/scribe/internal/youtube"
)

// Exit codes of the whole tool. Callers must not read more than
// success/failure into them; the detailed cause only appears in logs.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// DurationProber reports a media file's total duration.
type DurationProber interface {
	DurationMs(ctx context.Context, path string) (int64, error)
}

// Splitter partitions an audio file into ordered segments.
type Splitter interface {
	Split(ctx context.Context, path string) ([]media.Segment, error)
	SegmentLengthMs() int64
}

// Downloader resolves a video URL to a local audio file.
type Downloader interface {
	Download(ctx context.Context, url string) (*youtube.Result, error)
}

// Request is the immutable per-invocation configuration snapshot.
type Request struct {
	Input          string // local path or YouTube URL
	OutputPath     string // "" generates a timestamped name in OutputDir
	OutputDir      string
	Diarize        bool
	TagAudioEvents bool
	NumSpeakers    int
	OutputFormat   string
	LanguageHint   string
}

// sourceMeta is the provenance of a resolved input.
type sourceMeta struct {
	audioPath string
	title     string
	url       string
}

// Pipeline orchestrates one transcription run.
type Pipeline struct {
	service    stt.Service
	prober     DurationProber
	segmenter  Splitter
	downloader Downloader
	log        zerolog.Logger
}

// New assembles a Pipeline from its collaborators.
func New(service stt.Service, prober DurationProber, segmenter Splitter, downloader Downloader, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		service:    service,
		prober:     prober,
		segmenter:  segmenter,
		downloader: downloader,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// Run resolves the input, transcribes it segment by segment and writes
// the transcript. It returns ExitOK or ExitFailure rather than an
// error: the exit status is the tool's externally visible contract.
// Partial segment files and transcript content written before a
// failure are left on disk for diagnosis.
func (p *Pipeline) Run(ctx context.Context, req Request) int {
	src, ok := p.resolve(ctx, req.Input)
	if !ok {
		return ExitFailure
	}

	outPath := req.OutputPath
	if outPath == "" {
		outPath = filepath.Join(req.OutputDir, timefmt.OutputFilename(time.Now()))
	}
	writer := transcript.NewWriter(outPath)

	if err := writer.WriteHeader(transcript.Header{
		OriginalFilename: filepath.Base(src.audioPath),
		SourceTitle:      src.title,
		SourceURL:        src.url,
	}); err != nil {
		p.log.Error().Err(err).Msg("writing transcript header")
		return ExitFailure
	}

	segments, err := p.segmentsFor(ctx, src.audioPath)
	if err != nil {
		p.log.Error().Err(err).Str("input", src.audioPath).Msg("segmentation failed")
		return ExitFailure
	}

	// Segments go to the service strictly in index order, one at a
	// time. The grouper is shared across segments so a speaker who
	// talks through a boundary stays in one utterance.
	var grouper transcript.Grouper
	opts := stt.Options{
		Diarize:        req.Diarize,
		TagAudioEvents: req.TagAudioEvents,
		NumSpeakers:    req.NumSpeakers,
		OutputFormat:   req.OutputFormat,
		LanguageHint:   req.LanguageHint,
	}
	for _, seg := range segments {
		p.log.Info().Int("segment", seg.Index).Int("of", len(segments)).Msg("transcribing segment")

		tokens, err := p.service.Transcribe(ctx, seg.Path, opts)
		if err != nil {
			p.log.Error().Err(err).Int("segment", seg.Index).Msg("transcription failed")
			return ExitFailure
		}

		done := grouper.Feed(tokens, float64(seg.StartOffsetMs)/1000)
		if err := writer.AppendUtterances(done); err != nil {
			p.log.Error().Err(err).Msg("appending utterances")
			return ExitFailure
		}
	}

	if err := writer.AppendUtterances(grouper.Flush()); err != nil {
		p.log.Error().Err(err).Msg("appending final utterance")
		return ExitFailure
	}

	p.log.Info().Str("output", outPath).Msg("transcription complete")
	return ExitOK
}

// resolve turns the input reference into a local audio file. Downloader
// failure is terminal and converted to the failure status here rather
// than propagated.
func (p *Pipeline) resolve(ctx context.Context, input string) (sourceMeta, bool) {
	if !youtube.IsVideoURL(input) {
		return sourceMeta{audioPath: input}, true
	}

	res, err := p.downloader.Download(ctx, input)
	if err != nil {
		if errors.Is(err, errs.ErrDownloadFailed) {
			p.log.Error().Err(err).Str("url", input).Msg("download failed, aborting")
		} else {
			p.log.Error().Err(err).Str("url", input).Msg("unexpected downloader error")
		}
		return sourceMeta{}, false
	}
	return sourceMeta{audioPath: res.FilePath, title: res.Title, url: res.URL}, true
}

// segmentsFor splits the audio only when it exceeds one segment
// length; shorter files go to the service untouched.
func (p *Pipeline) segmentsFor(ctx context.Context, audioPath string) ([]media.Segment, error) {
	totalMs, err := p.prober.DurationMs(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	if totalMs <= p.segmenter.SegmentLengthMs() {
		return []media.Segment{{Index: 0, Path: audioPath, StartOffsetMs: 0}}, nil
	}
	return p.segmenter.Split(ctx, audioPath)
}
