package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/mcp"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/storage"
)

func (a *app) newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve parsing and stored applications over MCP stdio",
		Long: `Starts a Model Context Protocol server on stdin and stdout with the tools
parse_pdf_file, list_applications and get_application. parse_pdf_file only
reads documents inside --document-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			parser, validator, err := a.newParser(nil)
			if err != nil {
				return err
			}

			store, err := storage.Open(ctx, a.config.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			server, err := mcp.NewServer(a.config, parser, validator, store, a.logger)
			if err != nil {
				return err
			}
			return server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
