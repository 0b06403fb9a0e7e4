// SPDX-License-Identifier: MPL-2.0

// Package journal keeps a per-world SQLite history of pack installs,
// upgrades and removals. A *Journal satisfies addon.Recorder.
package journal
