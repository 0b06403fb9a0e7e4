// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/addonctl/addonctl/internal/config"
	"github.com/addonctl/addonctl/pkg/addon"
	"github.com/addonctl/addonctl/pkg/manifest"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// packRecord is the machine-readable form of an installed pack.
type packRecord struct {
	Kind        string `json:"kind" yaml:"kind" toml:"kind"`
	Name        string `json:"name" yaml:"name" toml:"name"`
	UUID        string `json:"uuid" yaml:"uuid" toml:"uuid"`
	Version     string `json:"version" yaml:"version" toml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	SizeBytes   int64  `json:"size_bytes" yaml:"size_bytes" toml:"size_bytes"`
	Path        string `json:"path" yaml:"path" toml:"path"`
}

func newListCommand(app *App, flags *globalFlags) *cobra.Command {
	var (
		resource bool
		behavior bool
		output   string
	)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the packs installed in the world",
		Long: `List the packs that are both present in the world and registered in its
active pack lists. Resource packs are listed before behavior packs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			format, err := s.outputFormat(output)
			if err != nil {
				return newServiceError(err, 0, "")
			}
			world, err := s.world()
			if err != nil {
				return err
			}

			var kinds []manifest.PackKind
			if resource {
				kinds = append(kinds, manifest.KindResource)
			}
			if behavior {
				kinds = append(kinds, manifest.KindBehavior)
			}

			packs, err := addon.List(world, kinds...)
			if err != nil {
				return asServiceError(err)
			}
			return s.printPacks(packs, format)
		},
	}

	listCmd.Flags().BoolVarP(&resource, "resource", "r", false, "list resource packs")
	listCmd.Flags().BoolVarP(&behavior, "behavior", "b", false, "list behavior packs")
	listCmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, yaml or toml (default from ui.output)")

	return listCmd
}

func (s *session) printPacks(packs []addon.InstalledPack, format config.OutputFormat) error {
	records := make([]packRecord, 0, len(packs))
	for _, p := range packs {
		size, err := p.Size()
		if err != nil {
			s.logger.Debug("failed to measure pack", "pack", p.Name(), "error", err)
		}
		records = append(records, packRecord{
			Kind:        p.Kind.String(),
			Name:        p.Name(),
			UUID:        p.UUID(),
			Version:     p.Manifest.Header.Version.String(),
			Description: p.Manifest.Header.Description,
			SizeBytes:   size,
			Path:        p.Dir,
		})
	}

	if format != config.OutputTable {
		return writeRecords(s.app.stdout, format, "packs", records)
	}

	if len(records) == 0 {
		s.printf("%s\n", SubtitleStyle.Render("No packs installed."))
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Kind, r.Name, r.Version, r.UUID, humanize.Bytes(uint64(r.SizeBytes))})
	}
	s.printf("%s\n", renderTable([]string{"Kind", "Name", "Version", "UUID", "Size"}, rows))
	s.printf("%s\n", SubtitleStyle.Render(fmt.Sprintf("%d pack(s)", len(records))))
	return nil
}
