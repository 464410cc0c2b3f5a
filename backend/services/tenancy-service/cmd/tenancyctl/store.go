package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/app"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Long: `Connects to DB_URL and applies every embedded migration.

The service applies the same migrations on start; this command exists for
deploy pipelines that migrate before rolling out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App, _ *app.Services) error {
				if a.Config.StoreDriver != config.StoreDriverPostgres {
					return errors.New("migrate requires STORE_DRIVER=postgres")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ensure the default dev units exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App, _ *app.Services) error {
				return a.SeedAllTestData(cmd.Context())
			})
		},
	}
}
