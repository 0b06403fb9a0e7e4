// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory. Tests use it
// because os.UserHomeDir does not honor HOME on every platform.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride points ConfigDir, FilePath, CreateDefaultConfig and
// Save at dir.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
