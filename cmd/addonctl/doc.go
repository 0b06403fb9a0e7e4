// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the addonctl command line interface.
//
// The root command installs the file given as its only argument; the
// subcommands install, list, show, remove and export packs of the selected
// world, watch installs archives dropped into an inbox directory, and history
// and config inspect the install journal and the user configuration. Every
// handler resolves its world through a session built from the App
// composition root.
package cmd
