// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/registry"

	"github.com/google/uuid"
)

type (
	// RemoveOptions configures Remove.
	RemoveOptions struct {
		// World is the world directory.
		World string
		// Identifier is a pack uuid or display name.
		Identifier string
		// BothKinds removes a behavior pack and a resource pack that share
		// the display name instead of failing.
		BothKinds bool
		Recorder  Recorder
		Logger    *slog.Logger
	}

	// RemoveResult lists the packs that were removed.
	RemoveResult struct {
		Removed []InstalledPack
	}
)

// Remove deletes the installed pack matching opts.Identifier. A uuid match
// wins over name matches; a name must be unique within its kind.
func Remove(ctx context.Context, opts RemoveOptions) (*RemoveResult, error) {
	logger := loggerOrDefault(opts.Logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targets, err := resolve(opts.World, opts.Identifier, opts.BothKinds, logger)
	if err != nil {
		return nil, err
	}

	result := &RemoveResult{}
	for _, p := range targets {
		if err := removePack(opts.World, p); err != nil {
			return result, err
		}
		result.Removed = append(result.Removed, p)
		logger.Debug("pack removed", "name", p.Name(), "uuid", p.UUID(), "kind", p.Kind.String())
		record(ctx, opts.Recorder, logger, Event{
			Action:  ActionRemoved,
			Kind:    p.Kind,
			PackID:  p.UUID(),
			Name:    p.Name(),
			Version: p.Entry.Version,
		})
	}
	return result, nil
}

// Find returns the installed pack matching identifier using the same rules
// as Remove. A name shared by a behavior and a resource pack is a
// *CrossKindNameCollisionError.
func Find(world, identifier string) (InstalledPack, error) {
	targets, err := resolve(world, identifier, false, nil)
	if err != nil {
		return InstalledPack{}, err
	}
	return targets[0], nil
}

func removePack(world string, p InstalledPack) error {
	if err := os.RemoveAll(p.Dir); err != nil {
		return fmt.Errorf("while removing %s: %w", p.Dir, err)
	}
	entries, err := registry.Load(world, p.Kind)
	if err != nil {
		return fmt.Errorf("while reading the %s pack list: %w", p.Kind, err)
	}
	if err := registry.Save(world, p.Kind, registry.RemoveEntry(entries, p.Entry)); err != nil {
		return fmt.Errorf("while writing the %s pack list: %w", p.Kind, err)
	}
	return nil
}

// resolve picks the packs an identifier refers to.
func resolve(world, identifier string, bothKinds bool, logger *slog.Logger) ([]InstalledPack, error) {
	behavior, err := installed(world, manifest.KindBehavior, logger)
	if err != nil {
		return nil, err
	}
	resource, err := installed(world, manifest.KindResource, logger)
	if err != nil {
		return nil, err
	}

	for _, set := range [][]InstalledPack{behavior, resource} {
		for _, p := range set {
			if sameUUID(identifier, p.UUID()) {
				return []InstalledPack{p}, nil
			}
		}
	}

	byName := func(set []InstalledPack) []InstalledPack {
		var out []InstalledPack
		for _, p := range set {
			if p.Name() == identifier {
				out = append(out, p)
			}
		}
		return out
	}
	bp, rp := byName(behavior), byName(resource)

	switch {
	case len(bp) > 1:
		return nil, &AmbiguousIdentifierError{Identifier: identifier, Kind: manifest.KindBehavior, Matches: bp}
	case len(rp) > 1:
		return nil, &AmbiguousIdentifierError{Identifier: identifier, Kind: manifest.KindResource, Matches: rp}
	case len(bp) == 1 && len(rp) == 1:
		if !bothKinds {
			return nil, &CrossKindNameCollisionError{Name: identifier}
		}
		return []InstalledPack{bp[0], rp[0]}, nil
	case len(bp) == 1:
		return bp, nil
	case len(rp) == 1:
		return rp, nil
	}
	return nil, &PackNotFoundError{Identifier: identifier}
}

// sameUUID compares uuids case- and format-insensitively when both parse,
// and as plain strings otherwise.
func sameUUID(identifier, packID string) bool {
	if identifier == packID {
		return true
	}
	a, err := uuid.Parse(identifier)
	if err != nil {
		return false
	}
	b, err := uuid.Parse(packID)
	if err != nil {
		return false
	}
	return a == b
}
