// SPDX-License-Identifier: MPL-2.0

// Package registry reads and writes the per-world active pack lists
// (world_behavior_packs.json and world_resource_packs.json).
//
// An active list is a JSON array of {pack_id, version} entries. The server
// treats it as a set keyed by pack_id, but the file is an ordered sequence;
// Upsert and RemoveEntry keep at most one entry per pack_id while leaving the
// order of untouched entries alone, so rewrites produce minimal diffs.
package registry
