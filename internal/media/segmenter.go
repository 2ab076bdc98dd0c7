package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/voxkit/scribe/internal/errs"
)

// DefaultSegmentLengthMs bounds each segment to what the remote
// transcription service accepts in one request.
const DefaultSegmentLengthMs int64 = 45 * 60 * 1000

// Segment is one bounded-duration slice of the original audio.
// Segments are disjoint, contiguous and ordered by Index; the last one
// may be shorter than the configured segment length.
type Segment struct {
	Index         int
	Path          string
	StartOffsetMs int64
}

// PlanSegments computes the start offsets of the fixed-length segments
// covering [0, totalDurationMs). A source shorter than one segment
// length yields exactly one offset, and an exact multiple of the
// segment length yields no trailing zero-length segment.
func PlanSegments(totalDurationMs, segmentLengthMs int64) []int64 {
	if totalDurationMs <= 0 || segmentLengthMs <= 0 {
		return []int64{0}
	}
	n := (totalDurationMs + segmentLengthMs - 1) / segmentLengthMs
	offsets := make([]int64, n)
	for i := int64(0); i < n; i++ {
		offsets[i] = i * segmentLengthMs
	}
	return offsets
}

// Segmenter partitions an audio file into sequentially numbered
// segment files under a dedicated temporary directory.
type Segmenter struct {
	runner          Runner
	prober          *Prober
	segmentLengthMs int64
	baseDir         string // "" means the system temp directory
	log             zerolog.Logger
}

// NewSegmenter builds a Segmenter. A nil runner falls back to os/exec,
// a non-positive segment length falls back to DefaultSegmentLengthMs.
func NewSegmenter(runner Runner, segmentLengthMs int64, baseDir string, log zerolog.Logger) *Segmenter {
	if runner == nil {
		runner = ExecRunner{}
	}
	if segmentLengthMs <= 0 {
		segmentLengthMs = DefaultSegmentLengthMs
	}
	return &Segmenter{
		runner:          runner,
		prober:          NewProber(runner),
		segmentLengthMs: segmentLengthMs,
		baseDir:         baseDir,
		log:             log.With().Str("component", "segmenter").Logger(),
	}
}

// SegmentLengthMs returns the configured segment length.
func (s *Segmenter) SegmentLengthMs() int64 { return s.segmentLengthMs }

// Split probes the source duration and extracts one file per planned
// segment, strictly in index order: segment i+1 starts only after
// segment i completed, so a failure names a single index and partial
// output stays bounded. On failure the already-produced segment files
// are left on disk for inspection.
func (s *Segmenter) Split(ctx context.Context, srcPath string) ([]Segment, error) {
	totalMs, err := s.prober.DurationMs(ctx, srcPath)
	if err != nil {
		return nil, err
	}
	return s.splitPlanned(ctx, srcPath, PlanSegments(totalMs, s.segmentLengthMs))
}

func (s *Segmenter) splitPlanned(ctx context.Context, srcPath string, offsets []int64) ([]Segment, error) {
	dir, err := os.MkdirTemp(s.baseDir, "scribe-segments-")
	if err != nil {
		return nil, errs.NewFileError("mkdir", s.baseDir, err)
	}

	// Shared run stamp keeps segment names from colliding across
	// concurrent runs; the 3-digit index keeps lexical order == time order.
	stamp := time.Now().Format("20060102T150405")
	lengthSec := float64(s.segmentLengthMs) / 1000

	segments := make([]Segment, 0, len(offsets))
	for i, offsetMs := range offsets {
		outPath := filepath.Join(dir, fmt.Sprintf("segment_%s_%03d.mp3", stamp, i))
		startSec := float64(offsetMs) / 1000

		s.log.Debug().Int("index", i).Float64("start_sec", startSec).Msg("extracting segment")
		if err := s.extract(ctx, srcPath, outPath, startSec, lengthSec); err != nil {
			return nil, errs.NewFileError("extract", srcPath, fmt.Errorf("segment %03d: %w", i, err))
		}

		segments = append(segments, Segment{Index: i, Path: outPath, StartOffsetMs: offsetMs})
	}

	s.log.Info().
		Int("segments", len(segments)).
		Strs("files", lo.Map(segments, func(seg Segment, _ int) string { return filepath.Base(seg.Path) })).
		Msg("segmentation complete")
	return segments, nil
}

// extract re-encodes one slice to fixed-bitrate mono mp3 for transport.
// ffmpeg truncates naturally at end of stream, so the final short
// segment needs no special-casing.
func (s *Segmenter) extract(ctx context.Context, srcPath, outPath string, startSec, lengthSec float64) error {
	out, err := s.runner.CombinedOutput(ctx, "ffmpeg",
		"-y",
		"-i", srcPath,
		"-ss", strconv.FormatFloat(startSec, 'f', 3, 64),
		"-t", strconv.FormatFloat(lengthSec, 'f', 3, 64),
		"-vn",
		"-ac", "1",
		"-codec:a", "libmp3lame",
		"-b:a", "128k",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("%v: %s", err, truncateOutput(out))
	}
	return nil
}
