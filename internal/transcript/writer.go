package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxkit/scribe/internal/errs"
	"github.com/voxkit/scribe/internal/timefmt"
)

// Header describes the provenance block written once at the top of a
// transcript file.
type Header struct {
	OriginalFilename string
	SourceTitle      string // optional, set for downloaded videos
	SourceURL        string // optional, set for downloaded videos
}

// Writer appends transcript content to a single output file. All
// writes open the file in append mode, so utterances can be written
// incrementally as segments finish instead of buffering the whole
// transcript, and a re-run against the same path never clobbers
// earlier content.
type Writer struct {
	path string
}

// NewWriter returns a Writer for the given destination path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the destination file path.
func (w *Writer) Path() string { return w.path }

// WriteHeader appends the header block. Parent directories are created
// as needed; failure to create them is a FileError naming the
// directory.
func (w *Writer) WriteHeader(h Header) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Original filename: %s\n", h.OriginalFilename)
	if h.SourceTitle != "" {
		fmt.Fprintf(&b, "YouTube title: %s\n", h.SourceTitle)
	}
	if h.SourceURL != "" {
		fmt.Fprintf(&b, "YouTube link: %s\n", h.SourceURL)
	}
	b.WriteString("\n# Transcription Result\n\n")
	return w.append(b.String())
}

// AppendUtterances appends one line per utterance: the formatted start
// timestamp, the speaker label, then the text.
func (w *Writer) AppendUtterances(utterances []Utterance) error {
	if len(utterances) == 0 {
		return nil
	}
	var b strings.Builder
	for _, u := range utterances {
		fmt.Fprintf(&b, "[%s] %s: %s\n", timefmt.Seconds(u.StartSeconds), u.Speaker, strings.TrimSpace(u.Text))
	}
	return w.append(b.String())
}

func (w *Writer) append(content string) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.NewFileError("mkdir", dir, err)
	}

	// O_APPEND keeps the write atomic at the file-system level; there
	// is a single logical writer today, but read-modify-write would
	// break the moment that changes.
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errs.NewFileError("open", w.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return errs.NewFileError("write", w.path, err)
	}
	return nil
}
