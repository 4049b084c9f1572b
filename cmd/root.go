package cmd

import (
	"fmt"
	"os"

	"github.com/isdelr/despesas-be/internal/config"
	"github.com/isdelr/despesas-be/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "despesas",
	Short: "Despesas API server for personal expense tracking",
	Long: `despesas serves the HTTP/JSON API of a personal finance tracker: accounts,
shared categories, owner-scoped expenses, per-category totals and an activity log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.Init(cfg.LogLevel, cfg.LogPretty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(usersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
