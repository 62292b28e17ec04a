// Package cli is the barberq command line: the HTTP server and operator
// commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"barberqueue-backend/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

type commandContext struct {
	settings *config.Settings
	logger   *slog.Logger
}

func (c *commandContext) load() {
	if c.settings != nil {
		return
	}
	s := config.Load()
	gin.SetMode(s.GinMode)
	c.settings = &s
	c.logger = config.NewLogger(s.LogLevel)
	slog.SetDefault(c.logger)
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "barberq",
		Short:         "Barbershop walk-in queue server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newAdminCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))

	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCommand(&commandContext{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
