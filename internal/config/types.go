// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultWorld is the level directory name used when neither a flag nor
	// the config file names one. It matches the name a fresh dedicated server
	// gives its first world.
	DefaultWorld = "Bedrock level"

	// DirTypeAuto detects whether the working directory is a server root or a level.
	DirTypeAuto DirType = "auto"
	// DirTypeServer forces the working directory to be treated as a server root.
	DirTypeServer DirType = "server"
	// DirTypeLevel forces the working directory to be treated as a level directory.
	DirTypeLevel DirType = "level"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// OutputTable renders listings as a styled table.
	OutputTable OutputFormat = "table"
	// OutputJSON renders listings as indented JSON.
	OutputJSON OutputFormat = "json"
	// OutputYAML renders listings as YAML.
	OutputYAML OutputFormat = "yaml"
	// OutputTOML renders listings as TOML.
	OutputTOML OutputFormat = "toml"
)

var (
	// ErrInvalidDirType is returned when a DirType value is not recognized.
	ErrInvalidDirType = errors.New("invalid directory type")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// DirType selects how the working directory is classified.
	DirType string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// OutputFormat selects how listings are printed.
	OutputFormat string

	// InvalidValueError is returned when an enumerated setting holds a value
	// outside its allowed set. It wraps the per-setting sentinel.
	InvalidValueError struct {
		Field   string
		Value   string
		Allowed []string
		kind    error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// the field-level errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultWorld is the level directory name under worlds/ in a server root.
		DefaultWorld string `json:"default_world" mapstructure:"default_world"`
		// DirType forces the working directory classification.
		DirType DirType `json:"dir_type" mapstructure:"dir_type"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Journal configures the per-world install journal.
		Journal JournalConfig `json:"journal" mapstructure:"journal"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Output is the default format for list and history.
		Output OutputFormat `json:"output" mapstructure:"output"`
	}

	// JournalConfig configures the install journal.
	JournalConfig struct {
		// Enabled records install, upgrade and remove events in the world.
		Enabled bool `json:"enabled" mapstructure:"enabled"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DefaultWorld: DefaultWorld,
		DirType:      DirTypeAuto,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
			Output:      OutputTable,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// DirTypes returns the accepted DirType values.
func DirTypes() []DirType { return []DirType{DirTypeAuto, DirTypeServer, DirTypeLevel} }

// ColorSchemes returns the accepted ColorScheme values.
func ColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight}
}

// OutputFormats returns the accepted OutputFormat values.
func OutputFormats() []OutputFormat {
	return []OutputFormat{OutputTable, OutputJSON, OutputYAML, OutputTOML}
}

// String returns the string representation of the DirType.
func (d DirType) String() string { return string(d) }

// IsValid reports whether d is one of DirTypes.
func (d DirType) IsValid() (bool, []error) {
	return checkEnum("dir_type", string(d), DirTypes(), ErrInvalidDirType)
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid reports whether c is one of ColorSchemes.
func (c ColorScheme) IsValid() (bool, []error) {
	return checkEnum("ui.color_scheme", string(c), ColorSchemes(), ErrInvalidColorScheme)
}

// String returns the string representation of the OutputFormat.
func (o OutputFormat) String() string { return string(o) }

// IsValid reports whether o is one of OutputFormats.
func (o OutputFormat) IsValid() (bool, []error) {
	return checkEnum("ui.output", string(o), OutputFormats(), ErrInvalidOutputFormat)
}

func checkEnum[T ~string](field, value string, allowed []T, kind error) (bool, []error) {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if string(a) == value {
			return true, nil
		}
		names[i] = string(a)
	}
	return false, []error{&InvalidValueError{Field: field, Value: value, Allowed: names, kind: kind}}
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %q is not one of %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Unwrap returns the per-setting sentinel for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return e.kind }

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config has valid fields.
// The world name must be a single path element; everything else is an enum.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.DefaultWorld) == "" || strings.ContainsAny(c.DefaultWorld, `/\`) || c.DefaultWorld == ".." {
		errs = append(errs, fmt.Errorf("default_world: %q is not a level directory name", c.DefaultWorld))
	}
	if valid, fieldErrs := c.DirType.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
