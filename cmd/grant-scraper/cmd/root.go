// Package cmd implements the grant-scraper command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/config"
)

// BuildInfo identifies the binary
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// app carries the state shared by the commands of one invocation
type app struct {
	build   BuildInfo
	loader  *config.Loader
	cfgFile string
	config  *config.Config
	logger  *slog.Logger
}

// NewRootCommand returns the command tree. Without a subcommand it scrapes.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{build: build, loader: config.NewLoader()}

	rootCmd := &cobra.Command{
		Use:   "grant-scraper",
		Short: "Scrape development applications from the District Council of Grant",
		Long: `Downloads the District Council of Grant development application registers,
reconstructs their tables and stores one record per application in SQLite.

Examples:
  grant-scraper
  grant-scraper scrape --max-documents 3
  grant-scraper parse register.pdf --layout v2
  grant-scraper mcp --document-dir ./registers`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
		RunE:              a.runScrape,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is grant-scraper.yaml in . or $HOME/.config/grant-scraper)")
	cobra.CheckErr(a.loader.BindFlags(rootCmd.PersistentFlags()))

	rootCmd.AddCommand(
		a.newScrapeCommand(),
		a.newParseCommand(),
		a.newMCPCommand(),
		a.newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute(build BuildInfo) int {
	if err := NewRootCommand(build).Execute(); err != nil {
		return 1
	}
	return 0
}

// initialize loads the configuration and sets up logging. Logs always go
// to stderr so stdout stays free for results and the MCP protocol.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	cfg.Version = a.build.Version
	a.config = cfg
	a.logger = newLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	if used := a.loader.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration file", "path", used)
	}
	a.logger.Debug("configuration", "config", cfg.String())
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "grant-scraper %s\n", a.build.Version)
			fmt.Fprintf(out, "Build time: %s\n", a.build.BuildTime)
			fmt.Fprintf(out, "Git commit: %s\n", a.build.GitCommit)
		},
	}
}
