// SPDX-License-Identifier: MPL-2.0

// Package manifest parses pack descriptors (manifest.json) and classifies
// packs as behavior or resource packs.
//
// A manifest is parsed on demand and never written back. Parsing goes
// through an embedded CUE schema so that the // comments and trailing commas
// found in hand-edited descriptors are tolerated while the handful of fields
// addonctl depends on are still checked strictly.
package manifest
