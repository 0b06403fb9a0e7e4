// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/addonctl/addonctl/internal/config"
	"github.com/addonctl/addonctl/internal/issue"
	"github.com/addonctl/addonctl/internal/journal"
	"github.com/addonctl/addonctl/internal/worlddir"
	"github.com/addonctl/addonctl/pkg/addon"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App reference and builds a
	// session from it.
	App struct {
		Config   ConfigProvider
		Journals JournalOpener
		stdout   io.Writer
		stderr   io.Writer
		environ  map[string]string
		cfgDir   string
		// issueStyle is the glamour style of the last loaded configuration,
		// used to render catalog entries once the command has failed.
		issueStyle string
		// installLogger makes each session the process-wide slog default.
		installLogger bool
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Journals JournalOpener
		Stdout   io.Writer
		Stderr   io.Writer
		// Environment replaces the process environment for ADDONCTL_*
		// overrides when non-nil.
		Environment map[string]string
		// ConfigDir replaces the platform config directory when set.
		ConfigDir string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Resolve(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// JournalOpener opens the install journal of a world directory.
	JournalOpener func(world string) (*journal.Journal, error)

	// globalFlags holds the persistent flags shared by every command.
	globalFlags struct {
		world     string
		dirType   string
		verbose   bool
		cfgFile   string
		directory string
	}

	// session is the state resolved once per command invocation.
	session struct {
		app     *App
		cfg     *config.Config
		cfgPath string
		verbose bool
		logger  *slog.Logger
		flags   *globalFlags
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Journals == nil {
		deps.Journals = journal.OpenWorld
	}

	return &App{
		Config:   deps.Config,
		Journals: deps.Journals,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		environ:  deps.Environment,
		cfgDir:   deps.ConfigDir,
	}, nil
}

// newSession loads configuration and sets up logging. Flags override
// configuration values.
func (a *App) newSession(ctx context.Context, flags *globalFlags) (*session, error) {
	cfg, cfgPath, err := a.Config.Resolve(ctx, config.LoadOptions{
		ConfigFilePath: flags.cfgFile,
		ConfigDirPath:  a.cfgDir,
		Environment:    a.environ,
	})
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId, "")
	}

	s := &session{
		app:     a,
		cfg:     cfg,
		cfgPath: cfgPath,
		verbose: flags.verbose || cfg.UI.Verbose,
		flags:   flags,
	}
	s.logger = newLogger(a.stderr, s.verbose)
	a.issueStyle = s.glamourStyle()
	if a.installLogger {
		slog.SetDefault(s.logger)
	}
	return s, nil
}

// errorStyle returns the glamour style for rendering a failed command's
// catalog entry. Before any configuration loaded it falls back to auto.
func (a *App) errorStyle() string {
	if a.issueStyle == "" {
		return string(config.ColorSchemeAuto)
	}
	return a.issueStyle
}

// configFilePath is the file `config init`, `config set` and `config path`
// operate on.
func (a *App) configFilePath(flags *globalFlags) (string, error) {
	if flags.cfgFile != "" {
		return flags.cfgFile, nil
	}
	if a.cfgDir != "" {
		return filepath.Join(a.cfgDir, config.ConfigFileName+"."+config.ConfigFileExt), nil
	}
	return config.FilePath()
}

// newLogger returns a charmbracelet/log backed slog logger. Debug records
// are shown only in verbose mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	return slog.New(handler)
}

// world resolves the world directory from --directory, --world,
// --force-dirtype and the configuration.
func (s *session) world() (string, error) {
	name := s.flags.world
	if name == "" {
		name = s.cfg.DefaultWorld
	}

	dirType := s.flags.dirType
	if dirType == "" {
		dirType = s.cfg.DirType.String()
	}
	typ, err := worlddir.ParseType(dirType)
	if err != nil {
		return "", newServiceError(err, 0, "")
	}

	world, err := worlddir.Resolve(worlddir.Options{
		Dir:   s.flags.directory,
		World: name,
		Force: typ,
	})
	if err != nil {
		return "", asServiceError(err)
	}
	s.logger.Debug("resolved world", "path", world)
	return world, nil
}

// recorder opens the world's journal when the journal is enabled. It never
// fails: a journal that cannot be opened is reported and skipped. The
// returned function closes it.
func (s *session) recorder(world string) (addon.Recorder, func()) {
	if !s.cfg.Journal.Enabled {
		return nil, func() {}
	}
	j, err := s.app.Journals(world)
	if err != nil {
		s.logger.Warn("install journal unavailable", "error", err)
		return nil, func() {}
	}
	return j, func() {
		if err := j.Close(); err != nil {
			s.logger.Warn("failed to close install journal", "error", err)
		}
	}
}

// glamourStyle maps the configured color scheme to a glamour style name.
func (s *session) glamourStyle() string {
	if s == nil || s.cfg == nil {
		return string(config.ColorSchemeDark)
	}
	return string(s.cfg.UI.ColorScheme)
}

// outputFormat resolves a per-command --output flag against ui.output.
func (s *session) outputFormat(flag string) (config.OutputFormat, error) {
	if flag == "" {
		return s.cfg.UI.Output, nil
	}
	f := config.OutputFormat(strings.ToLower(flag))
	if valid, errs := f.IsValid(); !valid {
		return "", errors.Join(errs...)
	}
	return f, nil
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.app.stdout, format, args...)
}
