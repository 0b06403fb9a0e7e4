// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// NewWorld creates an empty world directory with the files the server
// writes for every world.
func NewWorld(t testing.TB) string {
	t.Helper()
	world := filepath.Join(t.TempDir(), "Bedrock level")
	makeWorld(t, world)
	return world
}

// NewServer creates a server root holding one world called name. It returns
// the root and the world directory.
func NewServer(t testing.TB, name string) (root, world string) {
	t.Helper()
	root = t.TempDir()
	MustWriteFile(t, filepath.Join(root, "bedrock_server"), "")
	world = filepath.Join(root, "worlds", name)
	makeWorld(t, world)
	return root, world
}

func makeWorld(t testing.TB, dir string) {
	t.Helper()
	MustMkdirAll(t, filepath.Join(dir, "db"))
	MustWriteFile(t, filepath.Join(dir, "levelname.txt"), filepath.Base(dir))
	MustWriteFile(t, filepath.Join(dir, "level.dat"), "")
	MustWriteFile(t, filepath.Join(dir, "level.dat_old"), "")
}
