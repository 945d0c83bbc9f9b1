package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/storage"
)

func (a *app) newParseCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "parse FILE.pdf",
		Short: "Extract the applications of a local register PDF",
		Long: `Parses a register PDF from disk and prints its applications as JSON.
Use --layout to force a register layout instead of detecting it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, validator, err := a.newParser(nil)
			if err != nil {
				return err
			}

			data, err := validator.ReadFile(args[0])
			if err != nil {
				return err
			}

			records, err := parser.ParseDocument(cmd.Context(), data, args[0])
			if err != nil {
				return err
			}
			if records == nil {
				records = []applications.Record{}
			}

			if save {
				if err := a.saveRecords(cmd, records); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "also store the applications in the database")
	return cmd
}

func (a *app) saveRecords(cmd *cobra.Command, records []applications.Record) error {
	store, err := storage.Open(cmd.Context(), a.config.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	inserted := 0
	for _, r := range records {
		ok, err := store.Upsert(cmd.Context(), r)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	a.logger.Info("stored applications", "records", len(records), "inserted", inserted, "database", store.Path())
	return nil
}
