// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/addonctl/addonctl/pkg/manifest"
)

var (
	// ErrAmbiguousIdentifier is returned when a name matches several packs of one kind.
	ErrAmbiguousIdentifier = errors.New("identifier matches more than one pack")

	// ErrCrossKindNameCollision is returned when a name matches one behavior
	// pack and one resource pack and the caller did not ask for both.
	ErrCrossKindNameCollision = errors.New("name matches both a behavior and a resource pack")

	// ErrPackNotFound is returned when no installed pack matches an identifier.
	ErrPackNotFound = errors.New("no installed pack matches")

	// ErrUnsafePackName is returned when a pack's display name cannot be used
	// as a directory name.
	ErrUnsafePackName = errors.New("pack name is not a valid directory name")
)

type (
	// AmbiguousIdentifierError lists the packs a name matched.
	AmbiguousIdentifierError struct {
		Identifier string
		Kind       manifest.PackKind
		Matches    []InstalledPack
	}

	// CrossKindNameCollisionError names the shared display name.
	CrossKindNameCollisionError struct {
		Name string
	}

	// PackNotFoundError carries the identifier that matched nothing.
	PackNotFoundError struct {
		Identifier string
	}

	// UnsafePackNameError carries the rejected name.
	UnsafePackNameError struct {
		Name string
	}

	// PackFailure is one failed member of a batch install.
	PackFailure struct {
		// Source is the subdirectory or archive member name inside the batch.
		Source string
		Err    error
	}

	// BatchError is returned when at least one member of a batch failed.
	BatchError struct {
		Failures []PackFailure
	}
)

// Error implements the error interface.
func (e *AmbiguousIdentifierError) Error() string {
	uuids := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		uuids = append(uuids, m.UUID())
	}
	return fmt.Sprintf("%q matches %d %s packs (%s); use the uuid instead",
		e.Identifier, len(e.Matches), e.Kind, strings.Join(uuids, ", "))
}

// Unwrap returns ErrAmbiguousIdentifier.
func (e *AmbiguousIdentifierError) Unwrap() error { return ErrAmbiguousIdentifier }

// Error implements the error interface.
func (e *CrossKindNameCollisionError) Error() string {
	return fmt.Sprintf("a behavior pack and a resource pack are both named %q; use the uuid or remove both with --all", e.Name)
}

// Unwrap returns ErrCrossKindNameCollision.
func (e *CrossKindNameCollisionError) Unwrap() error { return ErrCrossKindNameCollision }

// Error implements the error interface.
func (e *PackNotFoundError) Error() string {
	return fmt.Sprintf("no installed pack matches %q", e.Identifier)
}

// Unwrap returns ErrPackNotFound.
func (e *PackNotFoundError) Unwrap() error { return ErrPackNotFound }

// Error implements the error interface.
func (e *UnsafePackNameError) Error() string {
	return fmt.Sprintf("pack name %q is not a valid directory name", e.Name)
}

// Unwrap returns ErrUnsafePackName.
func (e *UnsafePackNameError) Unwrap() error { return ErrUnsafePackName }

// Error implements the error interface.
func (f PackFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if len(e.Failures) == 1 {
		return "1 pack failed to install: " + e.Failures[0].Error()
	}
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, f.Error())
	}
	return fmt.Sprintf("%d packs failed to install:\n  %s", len(e.Failures), strings.Join(lines, "\n  "))
}

// Unwrap exposes every member failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
