// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newShowCommand(app *App, flags *globalFlags) *cobra.Command {
	var raw bool

	showCmd := &cobra.Command{
		Use:   "show <name|uuid>",
		Short: "Show the manifest of an installed pack",
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

			p, err := addon.Find(world, args[0])
			if err != nil {
				return asServiceError(err)
			}
			size, err := p.Size()
			if err != nil {
				s.logger.Debug("failed to measure pack", "pack", p.Name(), "error", err)
			}

			md := packMarkdown(p, size)
			if raw {
				s.printf("%s", md)
				return nil
			}
			rendered, err := glamour.Render(md, s.glamourStyle())
			if err != nil {
				s.logger.Debug("markdown rendering failed, printing raw", "error", err)
				rendered = md
			}
			s.printf("%s", rendered)
			return nil
		},
	}

	showCmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering it")

	return showCmd
}

// packMarkdown describes an installed pack as a markdown document.
func packMarkdown(p addon.InstalledPack, size int64) string {
	h := p.Manifest.Header
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", h.Name)
	if h.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", h.Description)
	}

	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Kind | %s |\n", p.Kind)
	fmt.Fprintf(&sb, "| UUID | `%s` |\n", h.UUID)
	fmt.Fprintf(&sb, "| Version | %s |\n", h.Version)
	modules := make([]string, 0, len(p.Manifest.Modules))
	for _, m := range p.Manifest.Modules {
		modules = append(modules, string(m.Type))
	}
	fmt.Fprintf(&sb, "| Modules | %s |\n", strings.Join(modules, ", "))
	fmt.Fprintf(&sb, "| Size | %s |\n", humanize.Bytes(uint64(size)))
	fmt.Fprintf(&sb, "| Path | `%s` |\n", p.Dir)

	if len(p.Manifest.Dependencies) > 0 {
		sb.WriteString("\n## Dependencies\n\n")
		for _, d := range p.Manifest.Dependencies {
			ref := d.ModuleName
			if ref == "" {
				ref = d.UUID
			}
			fmt.Fprintf(&sb, "- `%s` %s\n", ref, d.Version)
		}
	}

	if md := p.Manifest.Metadata; md != nil {
		sb.WriteString("\n## Metadata\n\n")
		if len(md.Authors) > 0 {
			fmt.Fprintf(&sb, "- Authors: %s\n", strings.Join(md.Authors, ", "))
		}
		if md.License != "" {
			fmt.Fprintf(&sb, "- License: %s\n", md.License)
		}
		if md.URL != "" {
			fmt.Fprintf(&sb, "- URL: <%s>\n", md.URL)
		}
	}

	return sb.String()
}
