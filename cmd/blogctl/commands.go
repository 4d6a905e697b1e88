package main

import (
	"errors" // Error inspection
	"fmt"    // Output and error wrapping

	"blog_system/internal/db"         // Schema migration
	"blog_system/internal/domain"     // Roles
	"blog_system/internal/repository" // User roles

	"github.com/spf13/cobra" // CLI framework
	"gorm.io/gorm"           // GORM ORM library
)

// opener yields a database connection for a command
type opener func() (*gorm.DB, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "blogctl",
		Short:        "Maintenance tasks for the blog database",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newRoleCmd(open, "promote", domain.RoleAdmin, "Grant the admin role to a user"),
		newRoleCmd(open, "demote", domain.RoleUser, "Revoke the admin role from a user"),
	)
	return root
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and articles tables",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			return db.Migrate(conn)
		},
	}
}

func newRoleCmd(open opener, use, role, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			users := repository.NewUserRepository(conn)
			err = users.SetRole(cmd.Context(), args[0], role)
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no user named %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", use, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
			return nil
		},
	}
}
