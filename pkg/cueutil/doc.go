// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user documents against embedded CUE schemas.
//
// Both manifest.json descriptors and the addonctl config.cue file go through
// the same flow:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the user document and unify it with that definition
//  3. Validate the result and decode it into a Go value
//
// JSON is a subset of CUE, so pack descriptors compile unchanged, and the
// // comments that pack authors leave in manifest.json are accepted for free.
//
// Decode uses CUE's own decoder. DecodeJSON exports the unified value as JSON
// first and decodes it with encoding/json, which lets target types keep their
// custom UnmarshalJSON methods.
//
//	//go:embed manifest_schema.cue
//	var schemaBytes []byte
//
//	m, err := cueutil.DecodeJSON[Manifest](schemaBytes, raw, "#Manifest",
//	    cueutil.WithFilename("manifest.json"))
package cueutil
