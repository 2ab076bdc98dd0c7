package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxkit/scribe/internal/errs"
)

// fakeRunner scripts command outputs and records every invocation.
type fakeRunner struct {
	probeOutput string
	probeErr    error
	failAtCall  int // 1-based ffmpeg call number to fail at; 0 = never
	calls       [][]string
}

func (f *fakeRunner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if name == "ffprobe" {
		return []byte(f.probeOutput), f.probeErr
	}
	ffmpegCalls := 0
	for _, c := range f.calls {
		if c[0] == "ffmpeg" {
			ffmpegCalls++
		}
	}
	if f.failAtCall != 0 && ffmpegCalls == f.failAtCall {
		return []byte("Invalid data found when processing input"), errors.New("exit status 1")
	}
	return nil, nil
}

func (f *fakeRunner) ffmpegCalls() [][]string {
	var out [][]string
	for _, c := range f.calls {
		if c[0] == "ffmpeg" {
			out = append(out, c)
		}
	}
	return out
}

func TestPlanSegments(t *testing.T) {
	const minute = int64(60 * 1000)

	tests := []struct {
		name     string
		totalMs  int64
		lengthMs int64
		want     []int64
	}{
		{"hundred minutes in 45-minute segments", 100 * minute, 45 * minute, []int64{0, 2700000, 5400000}},
		{"shorter than one segment", 10 * minute, 45 * minute, []int64{0}},
		{"exact multiple has no trailing empty segment", 90 * minute, 45 * minute, []int64{0, 2700000}},
		{"one millisecond over", 90*minute + 1, 45 * minute, []int64{0, 2700000, 5400000}},
		{"exactly one segment", 45 * minute, 45 * minute, []int64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSegments(tt.totalMs, tt.lengthMs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d offsets %v, want %v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("offset[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
			// Offsets must be strictly increasing and contiguous.
			for i := 1; i < len(got); i++ {
				if got[i]-got[i-1] != tt.lengthMs {
					t.Errorf("offsets not contiguous at %d: %v", i, got)
				}
			}
		})
	}
}

func TestSplitProducesOrderedSegments(t *testing.T) {
	runner := &fakeRunner{probeOutput: "6000.000000\n"} // 100 minutes
	seg := NewSegmenter(runner, 45*60*1000, t.TempDir(), zerolog.Nop())

	segments, err := seg.Split(context.Background(), "/audio/talk.mp3")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	wantOffsets := []int64{0, 2700000, 5400000}
	for i, s := range segments {
		if s.Index != i {
			t.Errorf("segment %d has index %d", i, s.Index)
		}
		if s.StartOffsetMs != wantOffsets[i] {
			t.Errorf("segment %d offset = %d, want %d", i, s.StartOffsetMs, wantOffsets[i])
		}
		if !strings.Contains(s.Path, fmt.Sprintf("_%03d.mp3", i)) {
			t.Errorf("segment %d path lacks zero-padded index: %q", i, s.Path)
		}
	}

	// One ffmpeg invocation per segment, in index order, with the
	// requested start positions.
	calls := runner.ffmpegCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 ffmpeg calls, got %d", len(calls))
	}
	wantStarts := []string{"0.000", "2700.000", "5400.000"}
	for i, call := range calls {
		if !containsPair(call, "-ss", wantStarts[i]) {
			t.Errorf("call %d missing -ss %s: %v", i, wantStarts[i], call)
		}
		if !containsPair(call, "-t", "2700.000") {
			t.Errorf("call %d missing -t 2700.000: %v", i, call)
		}
	}
}

func TestSplitShortSourceSingleSegment(t *testing.T) {
	runner := &fakeRunner{probeOutput: "61.5\n"}
	seg := NewSegmenter(runner, DefaultSegmentLengthMs, t.TempDir(), zerolog.Nop())

	segments, err := seg.Split(context.Background(), "/audio/short.wav")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].StartOffsetMs != 0 {
		t.Errorf("single segment should start at 0, got %d", segments[0].StartOffsetMs)
	}
}

func TestSplitAbortsOnExtractionFailure(t *testing.T) {
	runner := &fakeRunner{probeOutput: "8100.0\n", failAtCall: 2} // 3 planned segments
	seg := NewSegmenter(runner, 45*60*1000, t.TempDir(), zerolog.Nop())

	_, err := seg.Split(context.Background(), "/audio/talk.mp3")
	if err == nil {
		t.Fatal("expected error when segment 1 extraction fails")
	}

	var fe *errs.FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError, got %T: %v", err, err)
	}
	if fe.Path != "/audio/talk.mp3" {
		t.Errorf("FileError should name the source path, got %q", fe.Path)
	}
	if !strings.Contains(err.Error(), "segment 001") {
		t.Errorf("error should name the failed index, got %q", err)
	}

	// Remaining segments must not be attempted.
	if got := len(runner.ffmpegCalls()); got != 2 {
		t.Errorf("expected extraction to stop after the failure: %d ffmpeg calls", got)
	}
}

func TestSplitProbeFailure(t *testing.T) {
	runner := &fakeRunner{probeOutput: "garbage: no duration"}
	seg := NewSegmenter(runner, DefaultSegmentLengthMs, t.TempDir(), zerolog.Nop())

	_, err := seg.Split(context.Background(), "/audio/broken.mp3")
	var fe *errs.FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError for unparseable duration, got %v", err)
	}
	if fe.Op != "probe" {
		t.Errorf("expected probe op, got %q", fe.Op)
	}
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
