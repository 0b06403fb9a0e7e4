// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"time"

	"github.com/addonctl/addonctl/internal/config"
	"github.com/addonctl/addonctl/internal/journal"
	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// eventRecord is the machine-readable form of a journal event.
type eventRecord struct {
	Time     string `json:"time" yaml:"time" toml:"time"`
	Action   string `json:"action" yaml:"action" toml:"action"`
	Kind     string `json:"kind" yaml:"kind" toml:"kind"`
	Name     string `json:"name" yaml:"name" toml:"name"`
	UUID     string `json:"uuid" yaml:"uuid" toml:"uuid"`
	Version  string `json:"version" yaml:"version" toml:"version"`
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty" toml:"previous,omitempty"`
}

func newHistoryCommand(app *App, flags *globalFlags) *cobra.Command {
	var (
		limit  int
		output string
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent installs, upgrades and removals in the world",
		Args:  cobra.NoArgs,
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

			var events []addon.Event
			if _, statErr := os.Stat(journal.Path(world)); statErr == nil {
				j, err := app.Journals(world)
				if err != nil {
					return asServiceError(err)
				}
				defer func() { _ = j.Close() }()

				events, err = j.Recent(cmd.Context(), limit)
				if err != nil {
					return asServiceError(err)
				}
			}
			return s.printEvents(events, format)
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show, 0 for all")
	historyCmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, yaml or toml (default from ui.output)")

	return historyCmd
}

func (s *session) printEvents(events []addon.Event, format config.OutputFormat) error {
	records := make([]eventRecord, 0, len(events))
	for _, ev := range events {
		r := eventRecord{
			Time:    ev.Time.UTC().Format(time.RFC3339),
			Action:  ev.Action.String(),
			Kind:    ev.Kind.String(),
			Name:    ev.Name,
			UUID:    ev.PackID,
			Version: ev.Version.String(),
		}
		if ev.Previous != nil {
			r.Previous = ev.Previous.String()
		}
		records = append(records, r)
	}

	if format != config.OutputTable {
		return writeRecords(s.app.stdout, format, "events", records)
	}

	if len(events) == 0 {
		s.printf("%s\n", SubtitleStyle.Render("No history recorded."))
		return nil
	}

	rows := make([][]string, 0, len(events))
	for i, ev := range events {
		version := records[i].Version
		if records[i].Previous != "" {
			version = records[i].Previous + " -> " + version
		}
		rows = append(rows, []string{humanize.Time(ev.Time), records[i].Action, records[i].Kind, ev.Name, version})
	}
	s.printf("%s\n", renderTable([]string{"When", "Action", "Kind", "Name", "Version"}, rows))
	return nil
}
