package cli

import (
	"github.com/babushkai/saas-marketplace/internal/database"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("database migrations completed")
			return nil
		},
	}
}
