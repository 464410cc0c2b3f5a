// Command tenancyctl runs the tenancy-service jobs out of band against the
// configured store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/app"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	_ "time/tzdata"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tenancyctl",
		Short:         "Operate the tenancy-service jobs out of band",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(billingCmd())
	rootCmd.AddCommand(remindersCmd())
	rootCmd.AddCommand(activateCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(healthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads config, opens the store and runs fn with wired services.
func withApp(fn func(a *app.App, svc *app.Services) error) error {
	utils.InitLogger(config.AppName + "-ctl")
	cfg := config.LoadConfig()
	defer cfg.Close()

	a, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	svc := a.BuildServices()
	defer svc.Close()
	return fn(a, svc)
}
