package media

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/voxkit/scribe/internal/errs"
)

// Prober queries media durations through ffprobe.
type Prober struct {
	runner Runner
}

// NewProber returns a Prober backed by the given runner, defaulting to
// os/exec when nil.
func NewProber(runner Runner) *Prober {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Prober{runner: runner}
}

// DurationMs returns the total duration of the media file in
// milliseconds. Malformed or unreadable media surfaces as a FileError
// carrying the path.
func (p *Prober) DurationMs(ctx context.Context, path string) (int64, error) {
	out, err := p.runner.CombinedOutput(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, errs.NewFileError("probe", path, fmt.Errorf("%v: %s", err, truncateOutput(out)))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, errs.NewFileError("probe", path, fmt.Errorf("unparseable duration %q", strings.TrimSpace(string(out))))
	}
	if seconds <= 0 {
		return 0, errs.NewFileError("probe", path, fmt.Errorf("non-positive duration %v", seconds))
	}
	return int64(math.Round(seconds * 1000)), nil
}

// truncateOutput keeps error messages readable when ffmpeg dumps its
// full banner on stderr.
func truncateOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
