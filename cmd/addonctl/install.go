// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/spf13/cobra"
)

func newInstallCommand(app *App, flags *globalFlags) *cobra.Command {
	var batch bool

	installCmd := &cobra.Command{
		Use:   "install <file|dir>",
		Short: "Install a pack archive, an add-on or an unpacked pack directory",
		Long: `Install a pack into the world.

A .mcpack archive, a .zip archive or a directory must carry manifest.json at
its root. A .mcaddon archive, or any source given with --batch, holds several
packs: each subdirectory with a manifest.json and each nested .mcpack is
installed on its own, and a failing pack does not stop the others.

A pack already registered at the same or a newer version is skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, app, flags, args[0], batch)
		},
	}

	installCmd.Flags().BoolVar(&batch, "batch", false, "treat the source as a container of several packs")

	return installCmd
}

func runInstall(cmd *cobra.Command, app *App, flags *globalFlags, source string, batch bool) error {
	ctx := cmd.Context()

	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	world, err := s.world()
	if err != nil {
		return err
	}

	rec, closeRec := s.recorder(world)
	defer closeRec()

	result, err := addon.Install(ctx, addon.InstallOptions{
		World:    world,
		Source:   source,
		Batch:    batch,
		Recorder: rec,
		Logger:   s.logger,
	})
	s.printInstallResult(result)
	if result != nil && result.Changed() {
		s.printf("%s\n", SubtitleStyle.Render("Restart the server for the changes to take effect."))
	}
	return asServiceError(err)
}

func (s *session) printInstallResult(result *addon.InstallResult) {
	if result == nil {
		return
	}
	for _, o := range result.Outcomes {
		s.printOutcome(o)
	}
	for _, f := range result.Failures {
		s.printf("%s %s\n", ErrorStyle.Render("✗"), f.Error())
	}
}

func (s *session) printOutcome(o addon.Outcome) {
	if o.Action.Changed() {
		s.printf("%s %s\n", SuccessStyle.Render("✓"), o.Message())
		return
	}
	s.printf("%s %s\n", SubtitleStyle.Render("-"), SubtitleStyle.Render(o.Message()))
}
