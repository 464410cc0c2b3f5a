package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/app"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
)

func billingCmd() *cobra.Command {
	var horizonDays int
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Generate rent obligations due within the horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App, svc *app.Services) error {
				days := horizonDays
				if !cmd.Flags().Changed("horizon-days") {
					days = a.Config.BillingHorizonDays
				}
				created, err := svc.Billing.GenerateDue(cmd.Context(), days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d rent obligations\n", created)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&horizonDays, "horizon-days", constants.DefaultHorizonDays, "days ahead to bill")
	return cmd
}

func remindersCmd() *cobra.Command {
	var windowDays int
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Send reminders for unpaid rent due within the window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App, svc *app.Services) error {
				days := windowDays
				if !cmd.Flags().Changed("window-days") {
					days = a.Config.ReminderWindowDays
				}
				sent, skipped, err := svc.Reminders.DispatchReminders(cmd.Context(), days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminders, skipped %d\n", sent, skipped)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&windowDays, "window-days", constants.DefaultReminderWindow, "days ahead to remind")
	return cmd
}

func activateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Move confirmed tenancies whose start date has arrived to active",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(_ *app.App, svc *app.Services) error {
				n, err := svc.Lifecycle.ActivateStarted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "activated %d tenancies\n", n)
				return nil
			})
		},
	}
}
