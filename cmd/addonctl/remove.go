// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/spf13/cobra"
)

func newRemoveCommand(app *App, flags *globalFlags) *cobra.Command {
	var all bool

	removeCmd := &cobra.Command{
		Use:     "remove <name|uuid>",
		Aliases: []string{"rm", "uninstall"},
		Short:   "Remove an installed pack",
		Long: `Remove an installed pack and its registration.

The identifier is matched against pack uuids first and display names second.
When a behavior pack and a resource pack share the display name, the command
fails unless --all is given, in which case both are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := addon.Remove(ctx, addon.RemoveOptions{
				World:      world,
				Identifier: args[0],
				BothKinds:  all,
				Recorder:   rec,
				Logger:     s.logger,
			})
			if result != nil {
				for _, p := range result.Removed {
					s.printf("%s removed %s pack %s [%s]\n", SuccessStyle.Render("✓"), p.Kind, p.Name(), p.Entry.Version)
				}
			}
			return asServiceError(err)
		},
	}

	removeCmd.Flags().BoolVar(&all, "all", false, "remove both packs when a behavior and a resource pack share the name")

	return removeCmd
}
