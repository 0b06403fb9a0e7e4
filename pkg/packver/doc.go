// SPDX-License-Identifier: MPL-2.0

// Package packver implements the version value carried by pack manifests and
// active-pack-list files.
//
// Two encodings are legal on disk: a semantic version string ("1.2.3",
// "2.0.0-beta.1") and a fixed [major, minor, patch] integer array. Both are
// normalized at parse time into a single [Version]; nothing downstream knows
// which encoding a value came from.
package packver
