package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"rideboard/internal/logger"
	"rideboard/internal/repository"
	"rideboard/internal/service"
)

var adminEmail string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Give an existing account the admin role",
	Long: `Give an existing account the admin role. The user must log in again
for the role to appear in their token.

Example:
  rideboard admin grant --email ops@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
			auth := service.NewAuthService(repository.NewUserRepository(db), nil, nil, logger.Nop())
			if err := auth.GrantAdmin(ctx, adminEmail); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", adminEmail)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminGrantCmd)

	adminGrantCmd.Flags().StringVar(&adminEmail, "email", "", "Email of the account to promote")
	_ = adminGrantCmd.MarkFlagRequired("email")
}
