// Package errs defines the closed set of error kinds the tool
// distinguishes: local file/media failures, remote service failures,
// and downloader failure. Callers inspect them with errors.As/Is
// instead of parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// ErrDownloadFailed is the terminal signal returned when the external
// video downloader could not produce a local audio file. It is caught
// at the orchestrator boundary and converted to a failure exit code.
var ErrDownloadFailed = errors.New("video download failed")

// FileError reports a failed file-system or media operation and
// carries the offending path.
type FileError struct {
	Op   string // "probe", "extract", "mkdir", "open", "write"
	Path string
	Err  error
}

// NewFileError wraps err with the operation and path that failed.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

func (e *FileError) Unwrap() error { return e.Err }

// ServiceError reports a failed call to the remote transcription
// service. Status is the HTTP status code when the service answered,
// zero for transport-level failures.
type ServiceError struct {
	Status int
	Body   string
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transcription service: http %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("transcription service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
