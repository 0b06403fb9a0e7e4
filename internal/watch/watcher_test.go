// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs w in the background and returns a stop function that
// cancels it and checks Run's result.
func startWatcher(t *testing.T, w *Watcher) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	return func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Dir:      dir,
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
		OnReady: func(_ context.Context, paths []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, paths...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for _, name := range []string{"c.mcpack", "a.mcaddon", "b.zip"} {
		writeFile(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	want := []string{filepath.Join(w.Dir(), "a.mcaddon"), filepath.Join(w.Dir(), "b.zip"), filepath.Join(w.Dir(), "c.mcpack")}
	if !slices.Equal(collected, want) {
		t.Errorf("collected = %v, want %v", collected, want)
	}
}

func TestWatcherIgnoresNonArchives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnReady: func(_ context.Context, paths []string) error {
			fired <- paths
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "pack.mcpack.part"))
	time.Sleep(200 * time.Millisecond)

	select {
	case paths := <-fired:
		t.Fatalf("callback fired for ignored files: %v", paths)
	default:
	}

	writeFile(t, filepath.Join(dir, "Pack.MCPACK"))

	select {
	case paths := <-fired:
		if len(paths) != 1 || filepath.Base(paths[0]) != "Pack.MCPACK" {
			t.Errorf("paths = %v, want only Pack.MCPACK", paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherDropsVanishedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Dir:      dir,
		Debounce: 150 * time.Millisecond,
		Logger:   quietLogger(),
		OnReady: func(_ context.Context, paths []string) error {
			fired <- paths
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	gone := filepath.Join(dir, "gone.mcpack")
	writeFile(t, gone)
	writeFile(t, filepath.Join(dir, "kept.mcpack"))
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-fired:
		if len(paths) != 1 || filepath.Base(paths[0]) != "kept.mcpack" {
			t.Errorf("paths = %v, want only kept.mcpack", paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu      sync.Mutex
		batches [][]string
	)
	release := make(chan struct{})
	second := make(chan struct{})

	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnReady: func(_ context.Context, paths []string) error {
			mu.Lock()
			batches = append(batches, paths)
			n := len(batches)
			mu.Unlock()
			if n == 1 {
				<-release
			} else if n == 2 {
				close(second)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	writeFile(t, filepath.Join(dir, "one.mcpack"))
	time.Sleep(200 * time.Millisecond)
	// The first callback is still blocked; this batch must be retried.
	writeFile(t, filepath.Join(dir, "two.mcpack"))
	time.Sleep(200 * time.Millisecond)
	close(release)

	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("pending batch was lost while the callback was busy")
	}

	mu.Lock()
	defer mu.Unlock()
	if filepath.Base(batches[1][0]) != "two.mcpack" {
		t.Errorf("second batch = %v", batches[1])
	}
}

func TestWatcherScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.mcpack", "a.mcaddon", "readme.md", ".hidden.mcpack"} {
		writeFile(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.mcpack"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Dir: dir, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = w.fsw.Close() }()

	got, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	want := []string{filepath.Join(w.Dir(), "a.mcaddon"), filepath.Join(w.Dir(), "b.mcpack")}
	if !slices.Equal(got, want) {
		t.Errorf("Scan() = %v, want %v", got, want)
	}
}

func TestWatcherMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{Dir: dir, Ignore: []string{"test-*"}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = w.fsw.Close() }()

	tests := []struct {
		name string
		want bool
	}{
		{"pack.mcpack", true},
		{"ADDON.McAddon", true},
		{"pack.zip", true},
		{"pack.json", false},
		{".pack.mcpack", false},
		{"pack.mcpack.crdownload", false},
		{"pack.mcpack~", false},
		{"test-pack.mcpack", false},
	}
	for _, tt := range tests {
		if got := w.Matches(tt.name); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeFile(t, file)

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"missing dir", Config{Dir: filepath.Join(dir, "nope")}, os.ErrNotExist},
		{"not a dir", Config{Dir: file}, nil},
		{"bad pattern", Config{Dir: dir, Patterns: []string{"[unclosed"}}, ErrInvalidPattern},
		{"empty pattern", Config{Dir: dir, Patterns: []string{""}}, ErrInvalidPattern},
		{"bad ignore", Config{Dir: dir, Ignore: []string{"{a,b"}}, ErrInvalidPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatcherDoubleRun(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir(), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestDefaultPatternsIsCopy(t *testing.T) {
	t.Parallel()

	p := DefaultPatterns()
	p[0] = "*"
	if DefaultPatterns()[0] == "*" {
		t.Error("DefaultPatterns should return a copy")
	}
}
