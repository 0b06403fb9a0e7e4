// SPDX-License-Identifier: MPL-2.0

// Package config handles addonctl configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/addonctl/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/addonctl/config.cue on macOS, %APPDATA%\addonctl\config.cue
// on Windows), validated against the embedded config_schema.cue, and then overridden by
// ADDONCTL_* environment variables. Command-line flags take precedence over all of these
// and are applied by the CLI.
package config
