// Package media probes audio durations and slices long recordings into
// bounded-length segment files via ffmpeg/ffprobe subprocesses.
package media

import (
	"context"
	"os/exec"
)

// Runner executes an external command and returns its combined output.
// The default implementation shells out; tests substitute a fake.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
