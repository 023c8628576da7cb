package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/nest/internal/config"
	"github.com/ZebulonRouseFrantzich/nest/internal/platform"
	"github.com/ZebulonRouseFrantzich/nest/internal/service"
	"github.com/ZebulonRouseFrantzich/nest/internal/store"
)

// app carries flags and lazily built dependencies shared by all commands.
type app struct {
	caddyfile string
	verbose   bool
	format    string

	out      io.Writer
	errOut   io.Writer
	prompter prompter
	detector platform.Detector

	configDir string
	settings  *config.Settings
	logger    *log.Logger
	svc       *service.SiteService
}

func newApp() *app {
	return &app{
		out:      os.Stdout,
		errOut:   os.Stderr,
		prompter: huhPrompter{},
		detector: platform.NewDetector(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "nest",
		Short: "Manage the sites in a Caddyfile",
		Long: titleStyle.Render("nest") + mutedStyle.Render(" - manage the sites in a Caddyfile") + `

nest reads your Caddyfile, lets you add and remove sites and routes,
and writes it back in canonical form. Every change is written atomically
and the previous version is kept as a backup.

Settings live in nest.lua inside the nest config directory
($NEST_CONFIG_DIR, or the user config directory).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			return validateFormat(a.format)
		},
	}

	root.PersistentFlags().StringVar(&a.caddyfile, "caddyfile", "", "Caddyfile to edit (overrides settings and $NEST_CADDYFILE)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.format, "format", "o", formatText, "output format: text, json or yaml")

	root.AddCommand(
		newInitCmd(a),
		newSitesCmd(a),
		newRoutesCmd(a),
		newFmtCmd(a),
		newValidateCmd(a),
		newWatchCmd(a),
		newBackupsCmd(a),
		newEditCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the nest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "nest %s\n", versionString())
			return err
		},
	}
}

// settingsPath returns the location of nest.lua.
func (a *app) settingsPath() (string, error) {
	if a.configDir == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return "", err
		}
		a.configDir = dir
	}
	return filepath.Join(a.configDir, config.SettingsFileName), nil
}

// loadSettings reads nest.lua once and configures the logger from it.
func (a *app) loadSettings(ctx context.Context) (*config.Settings, error) {
	if a.settings != nil {
		return a.settings, nil
	}

	logger := log.NewWithOptions(a.errOut, log.Options{Prefix: "nest"})
	if a.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	path, err := a.settingsPath()
	if err != nil {
		return nil, err
	}
	settings, err := config.NewParser(a.detector).WithLogger(logger).Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load settings: %s", config.FormatError(err, a.verbose))
	}

	if !a.verbose {
		level, err := log.ParseLevel(settings.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", settings.LogLevel, err)
		}
		logger.SetLevel(level)
	}

	a.settings = settings
	a.logger = logger
	return settings, nil
}

// service builds the site service for the configured Caddyfile.
func (a *app) service(ctx context.Context) (*service.SiteService, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	settings, err := a.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	path := a.caddyfile
	if path == "" {
		path, err = settings.CaddyfilePath()
	} else {
		path, err = config.ExpandPath(path)
	}
	if err != nil {
		return nil, err
	}

	backupDir, err := settings.BackupPath(a.configDir)
	if err != nil {
		return nil, err
	}

	st := store.New(path, store.WithBackups(backupDir, settings.BackupRetention, service.RealClock{}))
	a.svc = service.NewSiteService(st, service.WithLogger(a.logger))
	a.logger.Debug("using caddyfile", "path", path, "backups", backupDir)
	return a.svc, nil
}
