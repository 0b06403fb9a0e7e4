// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures and fail-fast helpers for tests.
//
// Fixture builders write packs (WritePack, WriteMcpack, WriteMcaddon) and
// worlds (NewWorld, NewServer) into t.TempDir() trees. The Must* helpers wrap
// environment and filesystem calls so tests stop at the first failure.
package testutil
