// SPDX-License-Identifier: MPL-2.0

// Package watch watches an inbox directory for dropped pack archives.
//
// Files created or rewritten in the inbox are collected until the directory
// has been quiet for the debounce period, then handed to a callback in one
// sorted batch. Only the inbox itself is watched; subdirectories are not.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period before dropped files are handed over.
// Archives copied over a network share arrive in several writes.
const defaultDebounce = time.Second

var (
	// ErrInvalidPattern is returned by New for a malformed glob.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")

	// defaultPatterns select the archive formats addonctl installs.
	defaultPatterns = []string{"*.{mcpack,mcaddon,zip}"}

	// defaultIgnores cover partial downloads and editor or OS droppings.
	defaultIgnores = []string{".*", "*.part", "*.crdownload", "*.tmp", "*~"}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the inbox directory. It must exist.
		Dir string

		// Patterns are doublestar globs matched against lower-cased base
		// names. Empty means DefaultPatterns.
		Patterns []string

		// Ignore are extra globs merged with the built-in ignores.
		Ignore []string

		// Debounce is the quiet period after the last event. Zero or
		// negative values fall back to one second.
		Debounce time.Duration

		// OnReady receives the absolute paths of the matching files that
		// still exist when the debounce window closes, sorted. A nil
		// callback is a no-op.
		OnReady func(ctx context.Context, paths []string) error

		// Logger receives watcher diagnostics. Nil means slog.Default().
		Logger *slog.Logger
	}

	// Watcher monitors an inbox directory. Run must be called exactly once.
	Watcher struct {
		fsw      *fsnotify.Watcher
		dir      string
		patterns []string
		ignores  []string
		debounce time.Duration
		onReady  func(ctx context.Context, paths []string) error
		logger   *slog.Logger
		started  atomic.Bool
	}
)

// DefaultPatterns returns a copy of the built-in archive patterns.
func DefaultPatterns() []string {
	return slices.Clone(defaultPatterns)
}

// New validates cfg and starts watching cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve inbox directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: inbox directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", dir)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	if err := validatePatterns(patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("watch: close after init failure", "error", closeErr)
		}
		return nil, fmt.Errorf("watch: add %s: %w", dir, err)
	}

	return &Watcher{
		fsw:      fsw,
		dir:      dir,
		patterns: patterns,
		ignores:  ignores,
		debounce: debounce,
		onReady:  cfg.OnReady,
		logger:   logger,
	}, nil
}

// Dir returns the absolute inbox path.
func (w *Watcher) Dir() string { return w.dir }

// Matches reports whether a file with this base name would be handed over.
func (w *Watcher) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, pat := range w.ignores {
		if doublestar.MatchUnvalidated(pat, name) {
			return false
		}
	}
	for _, pat := range w.patterns {
		if doublestar.MatchUnvalidated(pat, name) {
			return true
		}
	}
	return false
}

// Scan returns the matching files already in the inbox, sorted.
func (w *Watcher) Scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch: read inbox: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && w.Matches(e.Name()) {
			out = append(out, filepath.Join(w.dir, e.Name()))
		}
	}
	return out, nil
}

// Run blocks until ctx is cancelled, dispatching debounced batches to
// OnReady. It returns nil on cancellation and an error when the underlying
// watcher breaks. Callbacks never overlap: a batch that becomes ready while
// the previous one is still being handled is retried after another
// debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		ready := existingFiles(changed)
		if len(ready) == 0 || w.onReady == nil {
			return
		}
		if err := w.onReady(ctx, ready); err != nil {
			w.logger.Warn("watch: callback failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("watch: close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}
			if filepath.Dir(evt.Name) != w.dir || !w.Matches(filepath.Base(evt.Name)) {
				continue
			}
			w.logger.Debug("watch: inbox event", "file", filepath.Base(evt.Name), "op", evt.Op.String())

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// existingFiles keeps the regular files among paths. Files moved away or
// deleted before the batch fired are dropped.
func existingFiles(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: %w %q", ErrInvalidPattern, pat)
		}
	}
	return nil
}
