// Package cli wires the treqt command surface: requirement extraction,
// distributed test runs, coverage reporting and change detection.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/drew/treqt/internal/config"
	"github.com/drew/treqt/internal/requirements"
	"github.com/drew/treqt/internal/store"
	"github.com/drew/treqt/internal/ui"
)

const (
	Version = "0.1.0"
	appName = "treqt"
)

// App carries the resolved dependencies every command works against.
// It is built once in the root command's PersistentPreRunE.
type App struct {
	Config   *config.Config
	Matcher  *requirements.Matcher
	Registry *requirements.Registry
	Store    *store.Store
	Colors   *ui.Colors
	Out      io.Writer
	Verbose  bool
}

// NewApp resolves configuration and constructs the shared dependencies
func NewApp(configPath string, noColor, verbose bool) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	matcher, err := requirements.NewMatcher(cfg.RequirementPatterns)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Matcher:  matcher,
		Registry: requirements.NewRegistry(cfg.RequirementsFile, matcher),
		Store:    store.New(cfg.CacheDir),
		Colors:   ui.NewColors(ui.IsColorEnabled() && !noColor),
		Out:      os.Stdout,
		Verbose:  verbose,
	}, nil
}

// Root builds the treqt command tree
func Root() *cobra.Command {
	var (
		configPath string
		noColor    bool
		verbose    bool
	)

	app := &App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Requirements traceability for Go test suites",
		Long: `treqt links requirements to the tests that verify them.

Requirement identifiers cited in test doc comments are validated against
the requirements document, tracked through test runs via JUnit reports,
and aggregated into coverage reports and change analyses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Commands that never touch configuration must work even
			// with a broken config file on disk.
			switch cmd.Name() {
			case "version", "help", "completion", cobra.ShellCompRequestCmd:
				return nil
			}
			built, err := NewApp(configPath, noColor, verbose)
			if err != nil {
				return err
			}
			*app = *built
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (treqt.toml or treqt.yaml)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show worker test output")

	cmd.AddCommand(
		runCmd(app),
		showCmd(app),
		coverageCmd(app),
		statsCmd(app),
		changesCmd(app),
		updateCmd(app),
		validateCmd(app),
		configCmd(app),
		watchCmd(app),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	}
}
