package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"barberqueue-backend/queue"
	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(*ctx.settings)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated")
			return nil
		},
	}
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default haircut catalog when it is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*ctx.settings, ctx.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.catalog.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog already has entries, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d haircut types\n", n)
			return nil
		},
	}
}

func newAdminCommand(ctx *commandContext) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage operator accounts",
	}

	var email, name, password, role string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*ctx.settings, ctx.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			admin, err := a.auth.CreateAdmin(cmd.Context(), email, name, password, role)
			var ve queue.ValidationError
			switch {
			case errors.As(err, &ve):
				return errors.New(ve.Message)
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", admin.Role, admin.Email, admin.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "Login email")
	createCmd.Flags().StringVar(&name, "name", "", "Display name")
	createCmd.Flags().StringVar(&password, "password", "", "Password, at least 8 characters")
	createCmd.Flags().StringVar(&role, "role", "admin", "Role: admin or staff")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(createCmd)
	return adminCmd
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the live queue",
	}
	queueCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List waiting and in-progress clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*ctx.settings, ctx.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.queue.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			loc := a.queue.Location()
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.Itoa(item.Position),
					item.ClientName,
					item.HaircutType.Name,
					utils.FormatMoney(ctx.settings.Currency, item.Price),
					item.Status.Label(),
					item.AddedAt.In(loc).Format("15:04"),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Client", "Haircut", "Price", "Status", "Added"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	})
	return queueCmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var today bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show served clients and revenue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*ctx.settings, ctx.logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			r := services.AllTime
			label := "All time"
			if today {
				r = a.queue.DayRange(time.Now())
				label = "Today"
			}
			stats, err := a.queue.Stats(cmd.Context(), r)
			if err != nil {
				return err
			}
			currency := ctx.settings.Currency
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Period", "Served", "Revenue", "Average"},
				[][]string{{
					label,
					strconv.FormatInt(stats.TotalAppointments, 10),
					utils.FormatMoney(currency, stats.TotalRevenue),
					utils.FormatMoney(currency, stats.AveragePrice),
				}},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "Only the current local day")
	return cmd
}
