// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/spf13/cobra"
)

func newExportCommand(app *App, flags *globalFlags) *cobra.Command {
	var output string

	exportCmd := &cobra.Command{
		Use:   "export <name|uuid>",
		Short: "Write an installed pack back to a .mcpack archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			world, err := s.world()
			if err != nil {
				return err
			}

			path, err := addon.Export(addon.ExportOptions{
				World:      world,
				Identifier: args[0],
				Output:     output,
			})
			if err != nil {
				return asServiceError(err)
			}
			s.printf("%s exported to %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default \"<name>.mcpack\" in the current directory)")

	return exportCmd
}
