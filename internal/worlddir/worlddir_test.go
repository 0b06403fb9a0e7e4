// SPDX-License-Identifier: MPL-2.0

package worlddir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func makeLevel(t *testing.T, dir string) {
	t.Helper()
	touch(t, filepath.Join(dir, "levelname.txt"))
	touch(t, filepath.Join(dir, "level.dat"))
	touch(t, filepath.Join(dir, "level.dat_old"))
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		want    Type
		wantErr error
	}{
		{"level", makeLevel, TypeLevel, nil},
		{"linux server", func(t *testing.T, dir string) { touch(t, filepath.Join(dir, "bedrock_server")) }, TypeServer, nil},
		{"windows server", func(t *testing.T, dir string) { touch(t, filepath.Join(dir, "bedrock_server.exe")) }, TypeServer, nil},
		{"server without binary", func(t *testing.T, dir string) {
			touch(t, filepath.Join(dir, "bedrock_server_how_to.html"))
			if err := os.MkdirAll(filepath.Join(dir, "worlds"), 0o755); err != nil {
				t.Fatal(err)
			}
		}, TypeServer, nil},
		{"how-to alone", func(t *testing.T, dir string) { touch(t, filepath.Join(dir, "bedrock_server_how_to.html")) }, TypeAuto, ErrIllegalWorkingDir},
		{"partial level", func(t *testing.T, dir string) { touch(t, filepath.Join(dir, "level.dat")) }, TypeAuto, ErrIllegalWorkingDir},
		{"empty", func(*testing.T, string) {}, TypeAuto, ErrIllegalWorkingDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tt.setup(t, dir)
			got, err := Detect(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Detect() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "bedrock_server"))
	world := filepath.Join(root, "worlds", "Bedrock level")
	makeLevel(t, world)

	got, err := Resolve(Options{Dir: root, World: "Bedrock level"})
	if err != nil {
		t.Fatalf("Resolve(server) error = %v", err)
	}
	if got != world {
		t.Errorf("Resolve(server) = %q, want %q", got, world)
	}

	if _, err := Resolve(Options{Dir: root, World: "Other"}); !errors.Is(err, ErrWorldNotFound) {
		t.Errorf("Resolve(missing world) error = %v, want ErrWorldNotFound", err)
	}

	got, err = Resolve(Options{Dir: world, World: "ignored"})
	if err != nil || got != world {
		t.Errorf("Resolve(level) = %q, %v", got, err)
	}

	plain := t.TempDir()
	got, err = Resolve(Options{Dir: plain, Force: TypeLevel})
	if err != nil || got != plain {
		t.Errorf("Resolve(forced level) = %q, %v", got, err)
	}
	if _, err := Resolve(Options{Dir: plain, World: "x", Force: TypeServer}); !errors.Is(err, ErrWorldNotFound) {
		t.Errorf("Resolve(forced server) error = %v, want ErrWorldNotFound", err)
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := map[string]Type{"": TypeAuto, "auto": TypeAuto, "server": TypeServer, "BDS": TypeServer, "level": TypeLevel}
	for in, want := range tests {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseType("castle"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("ParseType(castle) error = %v, want ErrInvalidType", err)
	}
}
