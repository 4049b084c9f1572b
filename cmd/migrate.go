package cmd

import (
	"fmt"

	"github.com/isdelr/despesas-be/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Applies all pending schema migrations to the SQLite database at DATABASE_PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(cfg.DatabasePath); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info().Str("path", cfg.DatabasePath).Msg("Database schema is up to date")
		return nil
	},
}
