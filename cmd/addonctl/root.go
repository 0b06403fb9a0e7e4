// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/addonctl/addonctl/internal/config"
	"github.com/addonctl/addonctl/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the addonctl command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "addonctl [file]",
		Short: "Manage behavior and resource packs of a Bedrock dedicated server world",
		Long: TitleStyle.Render("addonctl") + SubtitleStyle.Render(" - pack manager for Bedrock dedicated server worlds") + `

addonctl installs .mcpack and .mcaddon archives (or unpacked pack
directories) into a world, keeps world_behavior_packs.json and
world_resource_packs.json in sync, and removes packs again.

Run it from a server root (the directory holding bedrock_server and
worlds/) or from inside a world directory.

` + SubtitleStyle.Render("Examples:") + `
  addonctl my_pack.mcpack           Install a single pack
  addonctl install bundle.mcaddon   Install every pack in an add-on
  addonctl list -o json             List installed packs as JSON
  addonctl remove "My Pack"         Remove a pack by name or uuid
  addonctl -w Survival list         Operate on worlds/Survival`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runInstall(cmd, app, flags, args[0], false)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.world, "world", "w", "", fmt.Sprintf("world name under worlds/ when run from a server root (default %q)", config.DefaultWorld))
	pf.StringVar(&flags.dirType, "force-dirtype", "", "treat the working directory as a \"server\" root or a \"level\" directory")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/addonctl/config.cue)")
	pf.StringVarP(&flags.directory, "directory", "C", "", "run as if started in this directory")

	rootCmd.AddCommand(
		newInstallCommand(app, flags),
		newListCommand(app, flags),
		newShowCommand(app, flags),
		newRemoveCommand(app, flags),
		newExportCommand(app, flags),
		newHistoryCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command line. It is
// called by main.main and exits non-zero on any failure.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
	app.installLogger = true

	rootCmd := NewRootCommand(app)
	verbose := func() bool {
		v, _ := rootCmd.PersistentFlags().GetBool("verbose")
		return v
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			var svcErr *ServiceError
			if errors.As(err, &svcErr) {
				renderServiceError(w, svcErr, app.errorStyle())
			}
			fang.DefaultErrorHandler(w, styles, errors.New(formatErrorForDisplay(err, verbose())))
		}),
	); err != nil {
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
