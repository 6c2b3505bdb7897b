package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veo1/online-marketplace/app/database"
	"github.com/veo1/online-marketplace/models"
)

var userName string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users locally",
	Long: `Users normally come from the identity system. These commands exist for
local development and demos.`,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Insert a user and print its id",
	Long: `Insert a user and print its id.

Examples:
  marketplace users add --name alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close(db)

		user := &models.User{Name: userName}
		if err := models.NewUsersRepository(db).Create(cmd.Context(), user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		log.Info("user created", "user_id", user.ID)
		fmt.Fprintln(cmd.OutOrStdout(), user.ID)
		return nil
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCmd.AddCommand(usersAddCmd)
	rootCmd.AddCommand(usersCmd)
}
