// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/addonctl/addonctl/pkg/cueutil"
	"github.com/addonctl/addonctl/pkg/packver"

	"github.com/tailscale/hujson"
)

// FileName is the descriptor every pack carries at its root.
const FileName = "manifest.json"

const (
	// ModuleResources marks a resource pack module.
	ModuleResources ModuleType = "resources"
	// ModuleData marks a behavior pack data module.
	ModuleData ModuleType = "data"
	// ModuleWorldTemplate marks a world template.
	ModuleWorldTemplate ModuleType = "world_template"
	// ModuleScript marks a behavior pack script module.
	ModuleScript ModuleType = "script"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	//go:embed manifest_schema.cue
	manifestSchema []byte

	// ErrManifestParse is returned when a descriptor is malformed or misses a required field.
	ErrManifestParse = errors.New("invalid pack manifest")

	// ErrManifestNotFound is returned when a pack directory has no manifest.json.
	ErrManifestNotFound = errors.New("manifest.json not found")
)

type (
	// ModuleType is the "type" of one entry in the manifest's modules list.
	ModuleType string

	// Identity is the pair that identifies a pack independently of its version.
	Identity struct {
		UUID string
		Name string
	}

	// Header holds the identifying section of a manifest.
	Header struct {
		UUID        string          `json:"uuid"`
		Name        string          `json:"name"`
		Version     packver.Version `json:"version"`
		Description string          `json:"description,omitempty"`
	}

	// Module is one entry of the modules list.
	Module struct {
		Type ModuleType `json:"type"`
	}

	// Dependency references another pack or a script API module.
	Dependency struct {
		UUID       string          `json:"uuid,omitempty"`
		ModuleName string          `json:"module_name,omitempty"`
		Version    packver.Version `json:"version"`
	}

	// Metadata is the optional authorship section.
	Metadata struct {
		Authors []string `json:"authors,omitempty"`
		License string   `json:"license,omitempty"`
		URL     string   `json:"url,omitempty"`
	}

	// Manifest is the parsed pack descriptor.
	Manifest struct {
		Header       Header       `json:"header"`
		Modules      []Module     `json:"modules"`
		Dependencies []Dependency `json:"dependencies,omitempty"`
		Metadata     *Metadata    `json:"metadata,omitempty"`
	}

	// ParseError reports which descriptor failed to parse.
	ParseError struct {
		Source string
		Err    error
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid pack manifest %s: %v", e.Source, e.Err)
}

// Unwrap exposes both ErrManifestParse and the underlying cause.
func (e *ParseError) Unwrap() []error { return []error{ErrManifestParse, e.Err} }

// Identity returns the pack's (uuid, name) pair.
func (m *Manifest) Identity() Identity {
	return Identity{UUID: m.Header.UUID, Name: m.Header.Name}
}

// ModuleTypes returns the type of every module in declaration order.
func (m *Manifest) ModuleTypes() []ModuleType {
	types := make([]ModuleType, 0, len(m.Modules))
	for _, mod := range m.Modules {
		types = append(types, mod.Type)
	}
	return types
}

// Parse parses the text of a manifest.json descriptor.
func Parse(raw []byte) (*Manifest, error) {
	return parse(raw, FileName)
}

// Load reads and parses <dir>/manifest.json.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrManifestNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parse(raw, path)
}

func parse(raw []byte, source string) (*Manifest, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	// Pack authors write JSONC: line and block comments plus trailing commas.
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	m, err := cueutil.DecodeJSON[Manifest](manifestSchema, std, "#Manifest", cueutil.WithFilename(source))
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return m, nil
}
