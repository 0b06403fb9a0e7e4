// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/addonctl/addonctl/internal/watch"
	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/spf13/cobra"
)

const (
	// installedDir and failedDir receive handled archives inside the inbox.
	installedDir = "installed"
	failedDir    = "failed"
)

// inbox installs archives dropped into a watched directory.
type inbox struct {
	s        *session
	world    string
	recorder addon.Recorder
	// keep leaves handled archives in place instead of filing them.
	keep bool
}

func newWatchCommand(app *App, flags *globalFlags) *cobra.Command {
	var (
		keep     bool
		debounce time.Duration
	)

	watchCmd := &cobra.Command{
		Use:   "watch <inbox>",
		Short: "Install pack archives as they are dropped into a directory",
		Long: `Watch an inbox directory and install every .mcpack, .mcaddon or .zip
archive copied into it. Archives already present are installed on start.

Handled archives are moved to installed/ or failed/ inside the inbox unless
--keep is given. Stop with Ctrl+C.`,
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

			in := &inbox{s: s, world: world, recorder: rec, keep: keep}

			w, err := watch.New(watch.Config{
				Dir:      args[0],
				Debounce: debounce,
				Logger:   s.logger,
				OnReady:  in.handle,
			})
			if err != nil {
				return asServiceError(err)
			}

			existing, err := w.Scan()
			if err != nil {
				return asServiceError(err)
			}
			if err := in.handle(ctx, existing); err != nil {
				return asServiceError(err)
			}

			s.printf("%s %s\n", TitleStyle.Render("Watching"), w.Dir())
			s.printf("%s\n", SubtitleStyle.Render("Press Ctrl+C to stop."))
			return asServiceError(w.Run(ctx))
		},
	}

	watchCmd.Flags().BoolVar(&keep, "keep", false, "leave handled archives in the inbox")
	watchCmd.Flags().DurationVar(&debounce, "debounce", time.Second, "quiet period before dropped files are installed")

	return watchCmd
}

// handle installs each archive on its own. A failing archive is reported
// and filed; it never stops the watch.
func (in *inbox) handle(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		in.s.printf("%s %s\n", CmdStyle.Render("→"), filepath.Base(path))
		result, err := addon.Install(ctx, addon.InstallOptions{
			World:    in.world,
			Source:   path,
			Recorder: in.recorder,
			Logger:   in.s.logger,
		})
		in.s.printInstallResult(result)

		dest := installedDir
		if err != nil {
			dest = failedDir
			if !addon.IsBatchError(err) {
				in.s.printf("%s %s\n", ErrorStyle.Render("✗"), formatErrorForDisplay(err, in.s.verbose))
			}
		}
		if in.keep {
			continue
		}
		if moveErr := fileInto(path, dest); moveErr != nil {
			in.s.logger.Warn("failed to file handled archive", "file", path, "error", moveErr)
		}
	}
	return nil
}

// fileInto moves path into the named sibling subdirectory, replacing a
// previous archive of the same name.
func fileInto(path, subdir string) error {
	dir := filepath.Join(filepath.Dir(path), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	target := filepath.Join(dir, filepath.Base(path))
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}
	return nil
}
