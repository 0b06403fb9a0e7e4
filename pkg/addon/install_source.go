// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/addonctl/addonctl/internal/archive"
	"github.com/addonctl/addonctl/pkg/manifest"

	"golang.org/x/exp/slices"
)

// AddonExt is the extension of multi-pack archives.
const AddonExt = ".mcaddon"

// packArchiveExts are single-pack archives accepted as members of a batch.
var packArchiveExts = []string{".mcpack", ".zip"}

type (
	// InstallOptions configures Install.
	InstallOptions struct {
		// World is the world directory.
		World string
		// Source is a pack archive, a multi-pack archive or a directory.
		Source string
		// Batch treats Source as a container of packs even when it is a
		// directory or an archive without the .mcaddon extension.
		Batch    bool
		Recorder Recorder
		Logger   *slog.Logger
	}

	// InstallResult collects the outcome of every pack in a source.
	InstallResult struct {
		Outcomes []Outcome
		Failures []PackFailure
	}
)

// Changed reports whether any pack was installed or upgraded.
func (r *InstallResult) Changed() bool {
	for _, o := range r.Outcomes {
		if o.Action.Changed() {
			return true
		}
	}
	return false
}

// Install installs every pack in opts.Source. A .mcaddon archive (or any
// source when Batch is set) is a batch: each immediate subdirectory holding a
// manifest.json, and each nested .mcpack, is installed independently and
// failures are collected into a *BatchError. Anything else is a single pack
// that must carry manifest.json at its root.
func Install(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	logger := loggerOrDefault(opts.Logger)

	info, err := os.Stat(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack source: %w", err)
	}

	batch := opts.Batch || (!info.IsDir() && strings.EqualFold(filepath.Ext(opts.Source), AddonExt))

	dir := opts.Source
	if !info.IsDir() {
		tmp, err := os.MkdirTemp("", "addonctl-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }() // Best-effort cleanup

		if err := unpack(opts.Source, tmp, !batch); err != nil {
			return nil, err
		}
		dir = tmp
	}

	if !batch {
		out, err := InstallDir(ctx, InstallDirOptions{World: opts.World, Dir: dir, Recorder: opts.Recorder, Logger: logger})
		if err != nil {
			return nil, err
		}
		return &InstallResult{Outcomes: []Outcome{out}}, nil
	}
	return installBatch(ctx, opts, dir, logger)
}

// unpack extracts an archive into dest. Single-pack archives must carry
// manifest.json at their root.
func unpack(src, dest string, single bool) (err error) {
	r, err := archive.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if single && !r.Has(manifest.FileName) {
		return fmt.Errorf("%s: %w", src, manifest.ErrManifestNotFound)
	}
	if err := r.ExtractAll(dest); err != nil {
		return fmt.Errorf("failed to extract %s: %w", filepath.Base(src), err)
	}
	return nil
}

func installBatch(ctx context.Context, opts InstallOptions, dir string, logger *slog.Logger) (*InstallResult, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	result := &InstallResult{}
	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		member := filepath.Join(dir, d.Name())
		var (
			out    Outcome
			memErr error
		)
		switch {
		case d.IsDir():
			if _, statErr := os.Stat(filepath.Join(member, manifest.FileName)); statErr != nil {
				logger.Debug("skipping directory without manifest", "dir", d.Name())
				continue
			}
			out, memErr = InstallDir(ctx, InstallDirOptions{World: opts.World, Dir: member, Recorder: opts.Recorder, Logger: logger})
		case d.Type().IsRegular() && isPackArchive(d.Name()):
			out, memErr = installNestedArchive(ctx, opts, member, logger)
		default:
			continue
		}

		if memErr != nil {
			logger.Debug("pack failed", "member", d.Name(), "error", memErr)
			result.Failures = append(result.Failures, PackFailure{Source: d.Name(), Err: memErr})
			continue
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	if len(result.Failures) > 0 {
		return result, &BatchError{Failures: result.Failures}
	}
	return result, nil
}

func installNestedArchive(ctx context.Context, opts InstallOptions, path string, logger *slog.Logger) (Outcome, error) {
	tmp, err := os.MkdirTemp("", "addonctl-member-*")
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }() // Best-effort cleanup

	if err := unpack(path, tmp, true); err != nil {
		return Outcome{}, err
	}
	return InstallDir(ctx, InstallDirOptions{World: opts.World, Dir: tmp, Recorder: opts.Recorder, Logger: logger})
}

func isPackArchive(name string) bool {
	return slices.Contains(packArchiveExts, strings.ToLower(filepath.Ext(name)))
}

// IsBatchError reports whether err carries per-pack batch failures.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}
