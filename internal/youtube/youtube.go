// Package youtube recognizes YouTube URLs and downloads their audio
// track through yt-dlp.
package youtube

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voxkit/scribe/internal/errs"
	"github.com/voxkit/scribe/internal/fileutil"
	"github.com/voxkit/scribe/internal/media"
)

// The fixed URL shapes treated as YouTube input. Anything else is a
// local file path.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^https?://youtu\.be/[\w-]+`),
	regexp.MustCompile(`^https?://(www\.)?youtube\.com/shorts/[\w-]+`),
}

// IsVideoURL reports whether the input matches a recognized
// video-hosting URL shape.
func IsVideoURL(input string) bool {
	for _, re := range videoURLPatterns {
		if re.MatchString(input) {
			return true
		}
	}
	return false
}

// Result is the downloader's definitive output: a local audio file
// plus the video's provenance metadata.
type Result struct {
	FilePath string
	Title    string
	URL      string
}

// Downloader obtains a local audio file for a YouTube URL via yt-dlp.
type Downloader struct {
	runner media.Runner
	outDir string // "" means a fresh temp directory per download
	log    zerolog.Logger
}

// NewDownloader builds a Downloader. A nil runner falls back to os/exec.
func NewDownloader(runner media.Runner, outDir string, log zerolog.Logger) *Downloader {
	if runner == nil {
		runner = media.ExecRunner{}
	}
	return &Downloader{
		runner: runner,
		outDir: outDir,
		log:    log.With().Str("component", "downloader").Logger(),
	}
}

// Download fetches the audio track and title for the given URL. Any
// failure surfaces as ErrDownloadFailed; there are no partial results.
func (d *Downloader) Download(ctx context.Context, url string) (*Result, error) {
	title, err := d.queryTitle(ctx, url)
	if err != nil {
		return nil, err
	}

	dir := d.outDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "scribe-download-")
		if err != nil {
			return nil, fmt.Errorf("%w: create download dir: %v", errs.ErrDownloadFailed, err)
		}
	}

	name := fileutil.SanitizeTitle(title)
	if name == "" {
		name = "audio"
	}
	dest := filepath.Join(dir, name+".mp3")

	d.log.Info().Str("title", title).Str("dest", dest).Msg("downloading audio")
	out, err := d.runner.CombinedOutput(ctx, "yt-dlp",
		"--no-playlist",
		"-x", "--audio-format", "mp3",
		"-o", filepath.Join(dir, name+".%(ext)s"),
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", errs.ErrDownloadFailed, err, lastLine(out))
	}
	if _, err := os.Stat(dest); err != nil {
		return nil, fmt.Errorf("%w: expected output %s missing", errs.ErrDownloadFailed, dest)
	}

	return &Result{FilePath: dest, Title: title, URL: url}, nil
}

func (d *Downloader) queryTitle(ctx context.Context, url string) (string, error) {
	out, err := d.runner.CombinedOutput(ctx, "yt-dlp",
		"--no-playlist",
		"--skip-download",
		"--print", "%(title)s",
		url,
	)
	if err != nil {
		return "", fmt.Errorf("%w: query title: %v: %s", errs.ErrDownloadFailed, err, lastLine(out))
	}
	title := lastLine(out)
	if title == "" {
		return "", fmt.Errorf("%w: empty title for %s", errs.ErrDownloadFailed, url)
	}
	return title, nil
}

// lastLine returns the last non-empty output line; yt-dlp prefixes
// warnings before the printed value.
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
