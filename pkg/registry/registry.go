// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/packver"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	//go:embed registry_schema.json
	schemaText string

	listSchema = jsonschema.MustCompileString("registry_schema.json", schemaText)

	// ErrRegistryCorrupt is returned when an active pack list exists but is not
	// a valid JSON array of entries.
	ErrRegistryCorrupt = errors.New("active pack list is corrupt")
)

type (
	// Entry is one active pack: the pack's uuid and the version the world uses.
	Entry struct {
		PackID  string          `json:"pack_id"`
		Version packver.Version `json:"version"`
		// Extra holds the other fields of the entry, such as the subpack
		// chosen in the game. They are written back unchanged.
		Extra map[string]json.RawMessage `json:"-"`
	}

	// CorruptError names the list file that failed to load.
	CorruptError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("active pack list %s is corrupt: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrRegistryCorrupt and the underlying cause.
func (e *CorruptError) Unwrap() []error { return []error{ErrRegistryCorrupt, e.Err} }

// UnmarshalJSON decodes pack_id and version and keeps every other field in Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	delete(fields, "pack_id")
	delete(fields, "version")
	if len(fields) > 0 {
		p.Extra = fields
	}
	*e = Entry(p)
	return nil
}

// MarshalJSON writes pack_id and version followed by Extra in key order.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	base, err := json.Marshal(plain(e))
	if err != nil || len(e.Extra) == 0 {
		return base, err
	}

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, key := range slices.Sorted(maps.Keys(e.Extra)) {
		if key == "pack_id" || key == "version" {
			continue
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(e.Extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Equal reports whether both entries name the same pack at the same version.
func (e Entry) Equal(other Entry) bool {
	return e.PackID == other.PackID && e.Version.Equal(other.Version)
}

// Path returns the location of the active list for kind inside world.
func Path(world string, kind manifest.PackKind) string {
	return filepath.Join(world, kind.RegistryFile())
}

// Load reads the active list for kind. A missing file is an empty list.
func Load(world string, kind manifest.PackKind) ([]Entry, error) {
	path := Path(world, kind)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read %s pack list: %w", kind, err)
	}

	entries, err := decode(data)
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return entries, nil
}

func decode(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the top-level array")
	}
	if err := listSchema.Validate(doc); err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Save replaces the active list for kind with entries. The file is written
// to a temporary sibling and renamed over the target.
func Save(world string, kind manifest.PackKind, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s pack list: %w", kind, err)
	}
	data = append(data, '\n')

	path := Path(world, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+kind.RegistryFile()+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s pack list: %w", kind, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s pack list: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s pack list: %w", kind, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s pack list: %w", kind, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to rename %s pack list: %w", kind, err)
	}
	return nil
}

// Find returns the entry for packID.
func Find(entries []Entry, packID string) (Entry, bool) {
	for _, e := range entries {
		if e.PackID == packID {
			return e, true
		}
	}
	return Entry{}, false
}

// Contains reports whether entries holds e exactly (same pack, same version).
func Contains(entries []Entry, e Entry) bool {
	for _, existing := range entries {
		if existing.Equal(e) {
			return true
		}
	}
	return false
}

// Upsert drops every entry sharing e's pack_id and appends e. The input
// slice is not modified.
func Upsert(entries []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	for _, existing := range entries {
		if existing.PackID != e.PackID {
			out = append(out, existing)
		}
	}
	return append(out, e)
}

// RemoveEntry drops every entry equal to e. Entries for the same pack at a
// different version are kept. The input slice is not modified.
func RemoveEntry(entries []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, existing := range entries {
		if !existing.Equal(e) {
			out = append(out, existing)
		}
	}
	return out
}
