// SPDX-License-Identifier: MPL-2.0

// Package archive reads and writes the zip containers packs are distributed
// in (.mcpack, .mcaddon, .mcworld, .zip).
package archive
