package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/mapview/internal/ingest"
	"github.com/sells-group/mapview/internal/provider"
)

var (
	importSheet  string
	importSource string
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import a location spreadsheet into the SQLite snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Provider.SQLitePath == "" {
			return eris.New("provider.sqlite_path must be set to import")
		}

		snapshot, err := provider.NewSQLite(cfg.Provider.SQLitePath)
		if err != nil {
			return err
		}
		defer snapshot.Close()
		if err := snapshot.Migrate(cmd.Context()); err != nil {
			return err
		}

		summary, err := ingest.ImportXLSX(cmd.Context(), args[0], snapshot, ingest.Options{
			SheetName: importSheet,
			Source:    importSource,
		})
		if err != nil {
			return err
		}

		cmd.Printf("imported %d rows (%d without coordinates, %d skipped)\n",
			summary.Imported, summary.Unmappable, summary.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default first sheet)")
	importCmd.Flags().StringVar(&importSource, "source", "import", "source label recorded on rows")
	rootCmd.AddCommand(importCmd)
}
