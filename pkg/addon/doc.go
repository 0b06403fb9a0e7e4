// SPDX-License-Identifier: MPL-2.0

// Package addon installs, lists and removes packs in a world directory.
//
// A world keeps two sources of truth per pack kind: the pack directories
// under behavior_packs/ and resource_packs/, and the active pack lists
// maintained by package registry. A pack is "installed" only when both
// agree: its directory holds a manifest whose (uuid, version) pair is
// registered.
//
// Installation follows a small decision table keyed on the registered
// version of the candidate's uuid: absent installs, equal skips, newer skips
// and older upgrades. Pack contents are copied into a staging directory and
// renamed into place before the active list is rewritten, so an interrupted
// run leaves at worst an unregistered directory that the next run replaces.
package addon
