// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindResource is a resource pack (textures, sounds, UI).
	KindResource PackKind = iota + 1
	// KindBehavior is a behavior pack (data or script modules).
	KindBehavior
)

// ErrUnsupportedPackKind is returned for packs that are neither behavior
// nor resource packs, in practice world templates.
var ErrUnsupportedPackKind = errors.New("unsupported pack kind")

type (
	// PackKind selects the pack directory and active-pack list a pack belongs to.
	PackKind int

	// UnsupportedPackKindError names the pack that could not be classified.
	UnsupportedPackKindError struct {
		Name    string
		Modules []ModuleType
	}
)

// Error implements the error interface.
func (e *UnsupportedPackKindError) Error() string {
	types := make([]string, 0, len(e.Modules))
	for _, t := range e.Modules {
		types = append(types, string(t))
	}
	if len(types) == 0 {
		return fmt.Sprintf("pack %q declares no modules", e.Name)
	}
	return fmt.Sprintf("pack %q is not a behavior or resource pack (modules: %s)", e.Name, strings.Join(types, ", "))
}

// Unwrap returns ErrUnsupportedPackKind for errors.Is checks.
func (e *UnsupportedPackKindError) Unwrap() error { return ErrUnsupportedPackKind }

// Kinds returns every pack kind in listing order.
func Kinds() []PackKind { return []PackKind{KindResource, KindBehavior} }

// Classify derives the pack kind from the module types. Behavior wins when a
// pack declares both data/script and resources modules.
func Classify(m *Manifest) (PackKind, error) {
	var resource bool
	for _, mod := range m.Modules {
		switch mod.Type {
		case ModuleData, ModuleScript:
			return KindBehavior, nil
		case ModuleResources:
			resource = true
		}
	}
	if resource {
		return KindResource, nil
	}
	return 0, &UnsupportedPackKindError{Name: m.Header.Name, Modules: m.ModuleTypes()}
}

// String returns "behavior" or "resource".
func (k PackKind) String() string {
	switch k {
	case KindBehavior:
		return "behavior"
	case KindResource:
		return "resource"
	default:
		return fmt.Sprintf("PackKind(%d)", int(k))
	}
}

// DirName is the world subdirectory that holds packs of this kind.
func (k PackKind) DirName() string {
	switch k {
	case KindBehavior:
		return "behavior_packs"
	case KindResource:
		return "resource_packs"
	default:
		return ""
	}
}

// RegistryFile is the active-pack list file name for this kind.
func (k PackKind) RegistryFile() string {
	switch k {
	case KindBehavior:
		return "world_behavior_packs.json"
	case KindResource:
		return "world_resource_packs.json"
	default:
		return ""
	}
}
