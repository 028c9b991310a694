package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/provider"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the SQLite snapshot into the Postgres locations table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Provider.SQLitePath == "" {
			return eris.New("provider.sqlite_path must be set to sync")
		}
		if cfg.Provider.DatabaseURL == "" {
			return eris.New("provider.database_url must be set to sync")
		}

		snapshot, err := provider.NewSQLite(cfg.Provider.SQLitePath)
		if err != nil {
			return err
		}
		defer snapshot.Close()
		if err := snapshot.Migrate(cmd.Context()); err != nil {
			return err
		}

		records, err := snapshot.All(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			cmd.Println("snapshot is empty, nothing to sync")
			return nil
		}

		pg, err := provider.NewPostgres(cmd.Context(), cfg.Provider.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		n, err := pg.UpsertLocations(cmd.Context(), records)
		if err != nil {
			return err
		}

		zap.L().Info("synced snapshot to postgres",
			zap.Int("records", len(records)),
			zap.Int64("rows_affected", n))
		cmd.Printf("synced %d records (%d rows affected)\n", len(records), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
