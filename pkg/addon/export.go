// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"fmt"
	"path/filepath"

	"github.com/addonctl/addonctl/internal/archive"
)

// PackExt is the extension of single-pack archives.
const PackExt = ".mcpack"

// ExportOptions configures Export.
type ExportOptions struct {
	World      string
	Identifier string
	// Output is the archive path. Empty means "<name>.mcpack" in the
	// current directory.
	Output string
}

// Export writes an installed pack to a .mcpack archive and returns its path.
func Export(opts ExportOptions) (string, error) {
	p, err := Find(opts.World, opts.Identifier)
	if err != nil {
		return "", err
	}

	out := opts.Output
	if out == "" {
		out = p.Name() + PackExt
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	if err := archive.Create(p.Dir, abs); err != nil {
		return "", fmt.Errorf("while exporting %s: %w", p.Name(), err)
	}
	return abs, nil
}
