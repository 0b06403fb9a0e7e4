// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/addonctl/addonctl/internal/config"
	"github.com/addonctl/addonctl/internal/issue"

	"github.com/spf13/cobra"
)

// configKeys lists the keys accepted by `config set`, in display order.
var configKeys = []string{"default_world", "dir_type", "ui.verbose", "ui.color_scheme", "ui.output", "journal.enabled"}

// newConfigCommand creates the `addonctl config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage addonctl configuration",
		Long: `Manage addonctl configuration.

Configuration is stored in:
  - Linux: ~/.config/addonctl/config.cue
  - macOS: ~/Library/Application Support/addonctl/config.cue
  - Windows: %APPDATA%\addonctl\config.cue

ADDONCTL_WORLD, ADDONCTL_DIR_TYPE, ADDONCTL_VERBOSE, ADDONCTL_OUTPUT and
ADDONCTL_JOURNAL override the file; command-line flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			s.showConfig()
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath(flags)
			if err != nil {
				return asServiceError(err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath(flags)
			if err != nil {
				return asServiceError(err)
			}
			if err := config.CreateDefaultConfigAt(path); err != nil {
				return asServiceError(fmt.Errorf("failed to create config: %w", err))
			}
			fmt.Fprintf(app.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath(flags)
			if err != nil {
				return asServiceError(err)
			}

			// Environment overrides are not written back to the file.
			cfg, _, err := app.Config.Resolve(cmd.Context(), config.LoadOptions{
				ConfigFilePath: flags.cfgFile,
				ConfigDirPath:  app.cfgDir,
				Environment:    map[string]string{},
			})
			if err != nil {
				return newServiceError(err, issue.ConfigLoadFailedId, "")
			}

			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return newServiceError(err, 0, "")
			}
			if err := config.SaveTo(path, cfg); err != nil {
				return asServiceError(err)
			}

			fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), args[0], args[1])
			return nil
		},
	})

	return cfgCmd
}

func (s *session) showConfig() {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	s.printf("%s\n\n", TitleStyle.Render("Current Configuration"))

	if s.cfgPath != "" {
		s.printf("%s: %s\n\n", keyStyle.Render("Config file"), s.cfgPath)
	} else {
		s.printf("%s: %s\n\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	s.printf("%s: %s\n", keyStyle.Render("default_world"), valueStyle.Render(s.cfg.DefaultWorld))
	s.printf("%s: %s\n", keyStyle.Render("dir_type"), valueStyle.Render(s.cfg.DirType.String()))

	s.printf("\n%s:\n", keyStyle.Render("ui"))
	s.printf("  verbose: %s\n", valueStyle.Render(strconv.FormatBool(s.cfg.UI.Verbose)))
	s.printf("  color_scheme: %s\n", valueStyle.Render(s.cfg.UI.ColorScheme.String()))
	s.printf("  output: %s\n", valueStyle.Render(s.cfg.UI.Output.String()))

	s.printf("\n%s:\n", keyStyle.Render("journal"))
	s.printf("  enabled: %s\n", valueStyle.Render(strconv.FormatBool(s.cfg.Journal.Enabled)))
}

func setConfigValue(cfg *config.Config, key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %q is not a boolean", key, value)
		}
		return b, nil
	}

	var err error
	switch key {
	case "default_world":
		cfg.DefaultWorld = value
	case "dir_type":
		cfg.DirType = config.DirType(strings.ToLower(value))
	case "ui.verbose":
		cfg.UI.Verbose, err = parseBool()
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(strings.ToLower(value))
	case "ui.output":
		cfg.UI.Output = config.OutputFormat(strings.ToLower(value))
	case "journal.enabled":
		cfg.Journal.Enabled, err = parseBool()
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}
	if err != nil {
		return err
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}
	return nil
}
