// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/packver"
	"github.com/addonctl/addonctl/pkg/registry"
)

type (
	// InstallDirOptions configures InstallDir.
	InstallDirOptions struct {
		// World is the world directory.
		World string
		// Dir is an unpacked pack with manifest.json at its root.
		Dir      string
		Recorder Recorder
		Logger   *slog.Logger
	}

	// Outcome reports what happened to one pack.
	Outcome struct {
		Action   Action
		Kind     manifest.PackKind
		Identity manifest.Identity
		// Version is the candidate's version.
		Version packver.Version
		// Registered is the version found in the active list before the
		// operation, nil when the uuid was not registered.
		Registered *packver.Version
		// Path is the pack directory inside the world.
		Path string
	}
)

// Message renders the outcome as a one-line report.
func (o Outcome) Message() string {
	switch o.Action {
	case ActionInstalled:
		return fmt.Sprintf("installed %s [%s]", o.Identity.Name, o.Version)
	case ActionUpgraded:
		return fmt.Sprintf("upgraded %s [%s -> %s]", o.Identity.Name, o.Registered, o.Version)
	case ActionSkippedSameVersion:
		return fmt.Sprintf("%s [%s] is already installed at this version, skipped", o.Identity.Name, o.Version)
	case ActionSkippedNewer:
		return fmt.Sprintf("a newer version of %s [%s] is already installed, skipped %s", o.Identity.Name, o.Registered, o.Version)
	default:
		return fmt.Sprintf("%s %s [%s]", o.Action, o.Identity.Name, o.Version)
	}
}

// InstallDir installs the unpacked pack in opts.Dir into opts.World.
func InstallDir(ctx context.Context, opts InstallDirOptions) (Outcome, error) {
	logger := loggerOrDefault(opts.Logger)

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	m, err := manifest.Load(opts.Dir)
	if err != nil {
		return Outcome{}, err
	}
	kind, err := manifest.Classify(m)
	if err != nil {
		return Outcome{}, err
	}
	if err := checkPackName(m.Header.Name); err != nil {
		return Outcome{}, err
	}

	entries, err := registry.Load(opts.World, kind)
	if err != nil {
		return Outcome{}, fmt.Errorf("while reading the %s pack list: %w", kind, err)
	}

	out := Outcome{
		Kind:     kind,
		Identity: m.Identity(),
		Version:  m.Header.Version,
		Path:     filepath.Join(opts.World, kind.DirName(), m.Header.Name),
	}

	existing, found := registry.Find(entries, m.Header.UUID)
	if found {
		registered := existing.Version
		out.Registered = &registered
		switch c := existing.Version.Compare(m.Header.Version); {
		case c == 0:
			out.Action = ActionSkippedSameVersion
			return out, nil
		case c > 0:
			out.Action = ActionSkippedNewer
			return out, nil
		}
		out.Action = ActionUpgraded
	} else {
		out.Action = ActionInstalled
	}

	warnOnNameClash(logger, out.Path, m)

	if err := placeTree(opts.Dir, out.Path); err != nil {
		return Outcome{}, fmt.Errorf("while installing %s: %w", m.Header.Name, err)
	}

	entries = registry.Upsert(entries, registry.Entry{PackID: m.Header.UUID, Version: m.Header.Version})
	if err := registry.Save(opts.World, kind, entries); err != nil {
		return Outcome{}, fmt.Errorf("while writing the %s pack list: %w", kind, err)
	}

	logger.Debug("pack installed", "name", m.Header.Name, "uuid", m.Header.UUID, "version", m.Header.Version.String(), "kind", kind.String())
	record(ctx, opts.Recorder, logger, Event{
		Action:   out.Action,
		Kind:     kind,
		PackID:   m.Header.UUID,
		Name:     m.Header.Name,
		Version:  m.Header.Version,
		Previous: out.Registered,
	})
	return out, nil
}

// warnOnNameClash logs when the target directory already holds a different pack.
func warnOnNameClash(logger *slog.Logger, target string, m *manifest.Manifest) {
	current, err := manifest.Load(target)
	if err != nil {
		return
	}
	if current.Header.UUID != m.Header.UUID {
		logger.Warn("replacing a different pack with the same name",
			"name", m.Header.Name,
			"replaced_uuid", current.Header.UUID,
			"uuid", m.Header.UUID)
	}
}

// checkPackName rejects display names that are not exactly one path element.
// Trailing dots and spaces are rejected as Windows drops them from file names.
func checkPackName(name string) error {
	switch {
	case strings.TrimSpace(name) == "",
		name == ".", name == "..",
		strings.HasSuffix(name, "."), strings.HasSuffix(name, " "),
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0),
		filepath.VolumeName(name) != "",
		strings.HasPrefix(name, stagingPrefix):
		return &UnsafePackNameError{Name: name}
	}
	return nil
}
