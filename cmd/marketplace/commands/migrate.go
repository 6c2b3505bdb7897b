package commands

import (
	"github.com/spf13/cobra"

	"github.com/veo1/online-marketplace/app/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the users and products tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("schema migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
