// Package watch re-runs a callback whenever a file's content changes on
// disk. It watches the file's parent directory (editors save through
// renames and atomic replaces, which drop watches on the file itself),
// debounces event bursts and gates re-runs on a BLAKE3 content digest so
// touch-without-change saves are ignored.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"
)

// DefaultDebounce is how long the watcher waits after the last event
// before checking the file. Editors emit several events per save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher runs a callback when the watched file's content digest changes.
type Watcher struct {
	path     string
	base     string
	fsw      *fsnotify.Watcher
	last     [32]byte
	haveLast bool

	// Debounce and Errw may be set before Run. They default to
	// DefaultDebounce and os.Stderr.
	Debounce time.Duration
	Errw     io.Writer
}

// New creates a Watcher for path. The parent directory must exist.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{
		path:     path,
		base:     filepath.Base(path),
		fsw:      fsw,
		Debounce: DefaultDebounce,
		Errw:     os.Stderr,
	}, nil
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run invokes fn once immediately and again after every content change,
// until ctx is cancelled. A failing invocation is reported to Errw and the
// loop continues; only watcher breakage ends the loop with an error.
func (w *Watcher) Run(ctx context.Context, fn func() error) error {
	if data, err := os.ReadFile(w.path); err == nil {
		w.remember(data)
	}
	w.invoke(fn)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Base(ev.Name) != w.base {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
				fire = timer.C
			} else {
				timer.Reset(w.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			fmt.Fprintf(w.Errw, "warning: watch error: %v\n", err)
		case <-fire:
			timer = nil
			fire = nil
			data, err := os.ReadFile(w.path)
			if err != nil {
				fmt.Fprintf(w.Errw, "warning: reading %s: %v\n", w.path, err)
				continue
			}
			if !w.Changed(data) {
				continue
			}
			w.remember(data)
			w.invoke(fn)
		}
	}
}

func (w *Watcher) invoke(fn func() error) {
	if err := fn(); err != nil {
		fmt.Fprintf(w.Errw, "warning: %v\n", err)
	}
}

// Changed reports whether data's digest differs from the last remembered
// content. An empty history counts as changed.
func (w *Watcher) Changed(data []byte) bool {
	return !w.haveLast || blake3.Sum256(data) != w.last
}

func (w *Watcher) remember(data []byte) {
	w.last = blake3.Sum256(data)
	w.haveLast = true
}
