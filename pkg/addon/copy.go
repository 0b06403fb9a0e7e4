// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// stagingPrefix marks in-progress copies inside a kind directory. Listing
// ignores such directories.
const stagingPrefix = ".addonctl-staging-"

// packDirMode is the mode of an installed pack's root directory. The server
// may run under another account than the one installing.
const packDirMode = 0o755

// placeTree copies src into a fresh staging directory next to dst and then
// renames it over dst.
func placeTree(src, dst string) (err error) {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}

	staging, err := os.MkdirTemp(parent, stagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging) // Best-effort cleanup
		}
	}()

	if err := copyDir(src, staging); err != nil {
		return fmt.Errorf("failed to copy pack: %w", err)
	}
	// MkdirTemp creates 0700.
	if err := os.Chmod(staging, packDirMode); err != nil {
		return fmt.Errorf("failed to set pack directory mode: %w", err)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to remove existing directory %s: %w", dst, err)
	}
	if err := os.Rename(staging, dst); err != nil {
		return fmt.Errorf("failed to move pack into place: %w", err)
	}
	return nil
}

// copyDir recursively copies the contents of src into dst, skipping symlinks.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			continue
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
