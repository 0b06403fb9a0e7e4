// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/addonctl/addonctl/internal/archive"
	"github.com/addonctl/addonctl/internal/config"
	"github.com/addonctl/addonctl/internal/issue"
	"github.com/addonctl/addonctl/internal/worlddir"
	"github.com/addonctl/addonctl/pkg/addon"
	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/packver"
	"github.com/addonctl/addonctl/pkg/registry"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// issueMapping pairs a sentinel with the catalog entry explaining it.
// The first match wins, so more specific sentinels come first.
var issueMapping = []struct {
	target error
	id     issue.Id
}{
	{addon.ErrAmbiguousIdentifier, issue.AmbiguousIdentifierId},
	{addon.ErrCrossKindNameCollision, issue.CrossKindNameCollisionId},
	{addon.ErrPackNotFound, issue.PackNotFoundId},
	{addon.ErrUnsafePackName, issue.UnsafePackNameId},
	{manifest.ErrUnsupportedPackKind, issue.UnsupportedPackKindId},
	{manifest.ErrManifestNotFound, issue.ManifestNotFoundId},
	{manifest.ErrManifestParse, issue.ManifestParseErrorId},
	{packver.ErrInvalidVersion, issue.ManifestParseErrorId},
	{registry.ErrRegistryCorrupt, issue.RegistryCorruptId},
	{archive.ErrNotArchive, issue.NotAnArchiveId},
	{archive.ErrUnsafeEntry, issue.NotAnArchiveId},
	{worlddir.ErrIllegalWorkingDir, issue.IllegalWorkingDirId},
	{worlddir.ErrWorldNotFound, issue.WorldNotFoundId},
	{config.ErrInvalidConfig, issue.ConfigLoadFailedId},
	{fs.ErrPermission, issue.PermissionDeniedId},
	{fs.ErrNotExist, issue.FileNotFoundId},
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError returns the catalog entry that explains err, or 0.
// A batch failure is explained by the batch entry, not by its members.
func classifyError(err error) issue.Id {
	var batchErr *addon.BatchError
	if errors.As(err, &batchErr) {
		return issue.BatchInstallFailedId
	}
	for _, m := range issueMapping {
		if errors.Is(err, m.target) {
			return m.id
		}
	}
	return 0
}

// asServiceError wraps err for the CLI layer unless it already is a
// ServiceError. It returns nil for a nil err.
func asServiceError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	return newServiceError(err, classifyError(err), "")
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
