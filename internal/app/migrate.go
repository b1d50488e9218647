package app

import (
	"bilca_backend/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()
		return database.AutoMigrate(db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
