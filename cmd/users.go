package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/database"
	"github.com/isdelr/despesas-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	nameFlag     string
	emailFlag    string
	passwordFlag string
	stdinFlag    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
		}
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		if err := database.Migrate(cfg.DatabasePath); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ctx := cmd.Context()
		userService := services.NewUserService(db, auth.NewPasswordHasher(cfg.BcryptCost))
		account, err := userService.CreateUser(ctx, nameFlag, emailFlag, password)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		services.NewAuditService(db, nil).Record(ctx, account.ID, services.ActionSignup, account.Email)

		log.Info().Str("account_id", account.ID).Str("email", account.Email).Msg("Account created")
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&nameFlag, "name", "", "Display name")
	usersCreateCmd.Flags().StringVar(&emailFlag, "email", "", "Login email")
	usersCreateCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (prefer --stdin)")
	usersCreateCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read the password from stdin")
	usersCmd.AddCommand(usersCreateCmd)
}
