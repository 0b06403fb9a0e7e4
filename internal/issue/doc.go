// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// The catalog maps failure classes (missing manifest, corrupt pack list,
// ambiguous pack name, ...) to Markdown guidance rendered with glamour.
// ActionableError carries the operation, resource and suggestions for a
// single failure.
package issue
