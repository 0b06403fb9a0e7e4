// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/addonctl/addonctl/internal/testutil"
	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/packver"
	"github.com/addonctl/addonctl/pkg/registry"
)

// fakeRecorder collects events in memory.
type fakeRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *fakeRecorder) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *fakeRecorder) actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

func packDir(t *testing.T, p testutil.Pack) string {
	t.Helper()
	return testutil.WritePack(t, filepath.Join(t.TempDir(), p.Name), p)
}

func mustLoad(t *testing.T, world string, kind manifest.PackKind) []registry.Entry {
	t.Helper()
	entries, err := registry.Load(world, kind)
	if err != nil {
		t.Fatalf("registry.Load(%s): %v", kind, err)
	}
	return entries
}

func installDir(t *testing.T, world, dir string) Outcome {
	t.Helper()
	out, err := InstallDir(context.Background(), InstallDirOptions{World: world, Dir: dir})
	if err != nil {
		t.Fatalf("InstallDir(%s): %v", dir, err)
	}
	return out
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func v(s string) packver.Version { return packver.MustParse(s) }
