// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrNotArchive is returned when a file is not a readable zip container.
	ErrNotArchive = errors.New("not a zip archive")

	// ErrEntryNotFound is returned by ReadFile for a name the archive does not hold.
	ErrEntryNotFound = errors.New("archive entry not found")

	// ErrUnsafeEntry is returned for entries that would extract outside the
	// destination directory.
	ErrUnsafeEntry = errors.New("unsafe archive entry")
)

type (
	// Reader is an open archive.
	Reader struct {
		path string
		zr   *zip.ReadCloser
	}

	// EntryError names the archive entry an operation failed on.
	EntryError struct {
		Archive string
		Entry   string
		Err     error
	}
)

// Error implements the error interface.
func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Archive, e.Entry, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *EntryError) Unwrap() error { return e.Err }

// Open opens the archive at path.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotArchive)
		}
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	return &Reader{path: path, zr: zr}, nil
}

// IsArchive reports whether path is a readable zip container.
func IsArchive(path string) bool {
	r, err := Open(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}

// Close releases the underlying file.
func (r *Reader) Close() error { return r.zr.Close() }

// Names lists the normalized entry names in archive order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.zr.File))
	for _, f := range r.zr.File {
		names = append(names, entryName(f))
	}
	return names
}

// Has reports whether the archive holds a file called name.
func (r *Reader) Has(name string) bool {
	return r.lookup(name) != nil
}

// ReadFile returns the contents of the entry called name.
func (r *Reader) ReadFile(name string) (data []byte, err error) {
	f := r.lookup(name)
	if f == nil {
		return nil, &EntryError{Archive: r.path, Entry: name, Err: ErrEntryNotFound}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", name, r.path, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return io.ReadAll(rc)
}

func (r *Reader) lookup(name string) *zip.File {
	want := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	for _, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Clean(entryName(f)) == want {
			return f
		}
	}
	return nil
}

// ExtractAll writes every entry below dest, creating it if needed. No entry
// may resolve outside dest.
func (r *Reader) ExtractAll(dest string) error {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	for _, f := range r.zr.File {
		name := entryName(f)
		destPath, err := safeJoin(absDest, name)
		if err != nil {
			return &EntryError{Archive: r.path, Entry: f.Name, Err: err}
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}
		if f.Mode()&os.ModeSymlink != 0 {
			return &EntryError{Archive: r.path, Entry: f.Name, Err: ErrUnsafeEntry}
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := extractFile(f, destPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

// entryName normalizes archives built on Windows, which sometimes store
// backslash separators.
func entryName(f *zip.File) string {
	return strings.ReplaceAll(f.Name, `\`, "/")
}

func safeJoin(root, name string) (string, error) {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(filepath.FromSlash(name)) || filepath.VolumeName(filepath.FromSlash(name)) != "" {
		return "", ErrUnsafeEntry
	}
	destPath := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, destPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrUnsafeEntry
	}
	return destPath, nil
}

func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|0o200)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: packs are user-supplied local files
	_, err = io.Copy(destFile, rc)
	return err
}

// Create writes the contents of srcDir to a new archive at out. Entries are
// stored relative to srcDir, so srcDir/manifest.json becomes manifest.json.
// A partially written archive is removed on failure.
func Create(srcDir, out string) (err error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", srcDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", srcDir)
	}

	zipFile, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(out)
		}
	}()
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(srcDir, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(srcDir, p)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			if _, createErr := zw.Create(name + "/"); createErr != nil {
				return fmt.Errorf("failed to create directory entry: %w", createErr)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("failed to get file info: %w", infoErr)
		}
		header, headerErr := zip.FileInfoHeader(fi)
		if headerErr != nil {
			return fmt.Errorf("failed to create file header: %w", headerErr)
		}
		header.Name = name
		header.Method = zip.Deflate

		w, createErr := zw.CreateHeader(header)
		if createErr != nil {
			return fmt.Errorf("failed to create archive entry: %w", createErr)
		}
		return copyInto(w, p)
	})
	if walkErr != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, walkErr)
	}
	return nil
}

func copyInto(w io.Writer, src string) (err error) {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", src, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}
