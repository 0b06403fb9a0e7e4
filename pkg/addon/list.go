// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/registry"
)

// InstalledPack is a pack that is both present on disk and registered.
type InstalledPack struct {
	Kind     manifest.PackKind
	Manifest *manifest.Manifest
	Entry    registry.Entry
	// Dir is the pack's directory inside the world.
	Dir string
}

// Name returns the pack's display name.
func (p InstalledPack) Name() string { return p.Manifest.Header.Name }

// UUID returns the pack's uuid.
func (p InstalledPack) UUID() string { return p.Manifest.Header.UUID }

// Size returns the total size in bytes of the files in the pack directory.
func (p InstalledPack) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(p.Dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, infoErr := d.Info()
			if infoErr != nil {
				return infoErr
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// List returns the installed packs of the given kinds, resource packs first
// when no kind is given. Directories without a parseable manifest and
// registrations without a matching directory are left out.
func List(world string, kinds ...manifest.PackKind) ([]InstalledPack, error) {
	if len(kinds) == 0 {
		kinds = manifest.Kinds()
	}

	var packs []InstalledPack
	for _, kind := range kinds {
		found, err := installed(world, kind, nil)
		if err != nil {
			return nil, err
		}
		packs = append(packs, found...)
	}
	return packs, nil
}

// installed cross-references the kind's pack directories with its active list.
func installed(world string, kind manifest.PackKind, logger *slog.Logger) ([]InstalledPack, error) {
	logger = loggerOrDefault(logger)

	entries, err := registry.Load(world, kind)
	if err != nil {
		return nil, fmt.Errorf("while reading the %s pack list: %w", kind, err)
	}

	kindDir := filepath.Join(world, kind.DirName())
	dirents, err := os.ReadDir(kindDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("while reading %s: %w", kindDir, err)
	}

	var packs []InstalledPack
	for _, d := range dirents {
		if !d.IsDir() || strings.HasPrefix(d.Name(), stagingPrefix) {
			continue
		}
		dir := filepath.Join(kindDir, d.Name())
		m, err := manifest.Load(dir)
		if err != nil {
			logger.Debug("skipping pack directory", "dir", dir, "error", err)
			continue
		}
		e := registry.Entry{PackID: m.Header.UUID, Version: m.Header.Version}
		if !registry.Contains(entries, e) {
			continue
		}
		packs = append(packs, InstalledPack{Kind: kind, Manifest: m, Entry: e, Dir: dir})
	}
	return packs, nil
}
