package textsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// File shows the first line of a file and follows changes to it.
type File struct {
	Path string
	Log  zerolog.Logger
	// Debounce groups bursts of write events (default 100ms).
	Debounce time.Duration
}

// Run watches the file's directory, so the file may be created or replaced
// after Run starts.
func (f *File) Run(ctx context.Context, out chan<- string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("text file: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(f.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("text file: watch %s: %w", dir, err)
	}

	if !f.load(ctx, out) {
		return nil
	}

	delay := f.Debounce
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	debounce := time.NewTimer(delay)
	if !debounce.Stop() {
		<-debounce.C
	}

	name := filepath.Base(f.Path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(delay)

		case <-debounce.C:
			if !f.load(ctx, out) {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.Log.Warn().Err(err).Msg("text file watcher")
		}
	}
}

// load reads the file and sends its text. It returns false once ctx is done.
func (f *File) load(ctx context.Context, out chan<- string) bool {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		f.Log.Warn().Err(err).Str("path", f.Path).Msg("read text file")
		return ctx.Err() == nil
	}
	text := Text(b)
	f.Log.Debug().Str("path", f.Path).Str("text", text).Msg("text file loaded")
	return send(ctx, out, text)
}
