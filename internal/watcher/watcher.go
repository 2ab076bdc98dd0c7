// Package watcher monitors a directory for finished recordings and
// hands them to a handler once they stop growing.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// audioExtensions are the file types handed to the transcription
// pipeline; everything else in the watched directory is ignored.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".flac": true,
	".mp4":  true,
	".mkv":  true,
	".webm": true,
}

// IsAudioFile reports whether the path has a recognized audio/video
// extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Handler processes one settled file.
type Handler func(path string)

// Watcher waits for files in a directory to stop being written, then
// invokes the handler for each. Recorders write output incrementally,
// so a file only counts as finished after a quiet period with no
// further writes.
type Watcher struct {
	dir     string
	quiesce time.Duration
	handler Handler
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]time.Time // path -> last write seen
}

// New builds a Watcher for dir. quiesce <= 0 defaults to 2s.
func New(dir string, quiesce time.Duration, handler Handler, log zerolog.Logger) *Watcher {
	if quiesce <= 0 {
		quiesce = 2 * time.Second
	}
	return &Watcher{
		dir:     dir,
		quiesce: quiesce,
		handler: handler,
		log:     log.With().Str("component", "watcher").Logger(),
		pending: make(map[string]time.Time),
	}
}

// Watch blocks until ctx is cancelled, invoking the handler for every
// audio file that appears in the directory and settles.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info().Str("dir", w.dir).Msg("watching for recordings")

	ticker := time.NewTicker(w.quiesce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 && IsAudioFile(ev.Name) {
				w.touch(ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		case <-ticker.C:
			for _, path := range w.takeSettled(time.Now()) {
				w.log.Info().Str("file", path).Msg("recording settled")
				w.handler(path)
			}
		}
	}
}

func (w *Watcher) touch(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// takeSettled removes and returns the pending files whose last write
// is older than the quiesce window.
func (w *Watcher) takeSettled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.quiesce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	return settled
}
