// Package watcher reports image files appearing, changing and disappearing
// below a directory, in debounced batches.
//
// fsnotify watches single directories, so the watcher registers every
// subdirectory at start and each new directory as it is created. Events
// are accumulated per path and delivered on [Watcher.Events] once the tree
// has been quiet for the debounce duration.
package watcher

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/photowall/pkg/catalog"
	perrors "github.com/matzehuels/photowall/pkg/errors"
)

// Batch is one debounced set of changes. Paths are absolute and sorted.
// Removed may name a directory, in which case everything below it is gone.
type Batch struct {
	Added   []string
	Changed []string
	Removed []string
}

// Empty reports whether the batch carries no change.
func (b Batch) Empty() bool {
	return len(b.Added)+len(b.Changed)+len(b.Removed) == 0
}

// Gone reports whether path was removed, directly or with a parent directory.
func (b Batch) Gone(path string) bool {
	for _, r := range b.Removed {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

type change int

const (
	added change = iota + 1
	changed
	removed
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debouncer = NewDebouncer(d) }
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches one directory tree.
type Watcher struct {
	root      string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	logger    *log.Logger

	mu      sync.Mutex
	pending map[string]change

	out  chan Batch
	done chan struct{}
	once sync.Once
}

// New starts watching root and all directories below it. Hidden
// directories are not watched.
func New(root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "watch root %s", root)
	} else if !info.IsDir() {
		return nil, perrors.New(perrors.ErrCodeInvalidPath, "watch root %s is not a directory", root)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "create watcher")
	}
	w := &Watcher{
		root:      abs,
		fsw:       fsw,
		debouncer: NewDebouncer(DefaultDebounce),
		logger:    log.New(io.Discard),
		pending:   make(map[string]change),
		out:       make(chan Batch, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if _, err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string { return w.root }

// Events delivers debounced batches. The channel is closed when Run returns.
func (w *Watcher) Events() <-chan Batch { return w.out }

// Run consumes file system events until ctx is cancelled or the watcher
// fails. It closes the underlying watcher and the Events channel on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) stop() {
	w.once.Do(func() {
		w.debouncer.Cancel()
		close(w.done)
		_ = w.fsw.Close()
		// Flushes racing with stop observe done and never send.
		w.mu.Lock()
		close(w.out)
		w.mu.Unlock()
	})
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name
	if hidden(w.root, path) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			images, err := w.addTree(path)
			if err != nil {
				w.logger.Warn("cannot watch new directory", "dir", path, "err", err)
			}
			for _, img := range images {
				w.record(img, added)
			}
			return
		}
		if catalog.IsImage(path) {
			w.record(path, added)
		}
	case ev.Has(fsnotify.Write):
		if catalog.IsImage(path) {
			w.record(path, changed)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.record(path, removed)
	}
}

// record folds a new change into the pending state of path.
func (w *Watcher) record(path string, c change) {
	w.mu.Lock()
	prev, seen := w.pending[path]
	switch {
	case !seen:
		w.pending[path] = c
	case prev == added && c == changed:
		// still a new file
	case prev == added && c == removed:
		delete(w.pending, path)
	case prev == removed && c == added:
		w.pending[path] = changed
	default:
		w.pending[path] = c
	}
	w.mu.Unlock()
	w.debouncer.Trigger(w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	if len(w.pending) == 0 {
		return
	}
	var b Batch
	for path, c := range w.pending {
		switch c {
		case added:
			b.Added = append(b.Added, path)
		case changed:
			b.Changed = append(b.Changed, path)
		case removed:
			b.Removed = append(b.Removed, path)
		}
	}
	clear(w.pending)
	slices.Sort(b.Added)
	slices.Sort(b.Changed)
	slices.Sort(b.Removed)

	// Merge into an undelivered batch instead of blocking the timer.
	select {
	case w.out <- b:
	case old := <-w.out:
		w.out <- merge(old, b)
	}
}

func merge(a, b Batch) Batch {
	a.Added = append(a.Added, b.Added...)
	a.Changed = append(a.Changed, b.Changed...)
	a.Removed = append(a.Removed, b.Removed...)
	slices.Sort(a.Added)
	slices.Sort(a.Changed)
	slices.Sort(a.Removed)
	return a
}

// addTree watches dir and every non-hidden directory below it, returning
// the image files found on the way.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var (
		mu     sync.Mutex
		dirs   []string
		images []string
	)
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, dir, fastwalk.IgnorePermissionErrors(func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if d.IsDir() {
			dirs = append(dirs, path)
		} else if catalog.IsImage(path) {
			images = append(images, path)
		}
		return nil
	}))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "walk %s", dir)
	}
	for _, d := range dirs {
		if err := w.fsw.Add(d); err != nil {
			return images, perrors.Wrap(perrors.ErrCodeInternal, err, "watch %s", d)
		}
	}
	slices.Sort(images)
	return images, nil
}

func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
