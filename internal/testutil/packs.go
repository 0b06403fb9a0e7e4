// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/addonctl/addonctl/internal/archive"
)

// Pack describes a fixture pack.
type Pack struct {
	Name string
	UUID string
	// Version is written verbatim: a string such as "1.2.3" or a [3]int.
	Version any
	// Modules lists module types. Empty means a single "data" module.
	Modules     []string
	Description string
	// Files are extra files written relative to the pack root.
	Files map[string]string
}

// ManifestJSON renders the pack's manifest.json.
func (p Pack) ManifestJSON(t testing.TB) string {
	t.Helper()

	modules := p.Modules
	if len(modules) == 0 {
		modules = []string{"data"}
	}
	mods := make([]map[string]any, 0, len(modules))
	for _, m := range modules {
		mods = append(mods, map[string]any{"type": m})
	}

	header := map[string]any{
		"name":    p.Name,
		"uuid":    p.UUID,
		"version": p.Version,
	}
	if p.Description != "" {
		header["description"] = p.Description
	}

	data, err := json.MarshalIndent(map[string]any{
		"format_version": 2,
		"header":         header,
		"modules":        mods,
	}, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode manifest: %v", err)
	}
	return string(data)
}

// WritePack writes the pack into dir and returns dir.
func WritePack(t testing.TB, dir string, p Pack) string {
	t.Helper()
	MustWriteFile(t, filepath.Join(dir, "manifest.json"), p.ManifestJSON(t))
	for name, content := range p.Files {
		MustWriteFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
	}
	return dir
}

// WriteMcpack writes the pack as a single-pack archive at path.
func WriteMcpack(t testing.TB, path string, p Pack) string {
	t.Helper()
	src := WritePack(t, filepath.Join(t.TempDir(), "src"), p)
	if err := archive.Create(src, path); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	return path
}

// WriteMcaddon writes a multi-pack archive at path with one subdirectory per
// pack, keyed by the map key.
func WriteMcaddon(t testing.TB, path string, packs map[string]Pack) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "addon")
	MustMkdirAll(t, src)
	for dir, p := range packs {
		WritePack(t, filepath.Join(src, dir), p)
	}
	if err := archive.Create(src, path); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	return path
}
