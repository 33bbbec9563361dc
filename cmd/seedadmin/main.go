package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/bootstrap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "seedadmin",
		Short: "Create or reset an admin account",
		Long: `Create the admin with the given email, or reset the name and password of
the admin that already uses it. Flags default to ADMIN_EMAIL, ADMIN_PASSWORD
and ADMIN_NAME.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			if email == "" {
				email = cfg.Auth.AdminEmail
			}
			if password == "" {
				password = cfg.Auth.AdminPassword
			}
			if name == "" {
				name = cfg.Auth.AdminName
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			st, err := bootstrap.OpenStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			admin, err := auth.EnsureAdmin(ctx, st, email, password, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s is ready\n", admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (default $ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&name, "name", "", "display name (default $ADMIN_NAME)")

	return cmd
}
