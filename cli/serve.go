package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"barberqueue-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily report scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cc *commandContext) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := *cc.settings
	a, err := newApp(s, cc.logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if s.ReportCron != "" {
		if err := a.reports.StartScheduler(s.ReportCron); err != nil {
			return err
		}
		defer a.reports.Stop()
	}

	router := routes.SetupRouter(routes.Deps{
		Queue:         a.queue,
		Catalog:       a.catalog,
		Auth:          a.auth,
		Reports:       a.reports,
		Notifications: a.logs,
		Tokens:        a.tokens,
		Logger:        cc.logger,
		CORSOrigins:   s.CORSOrigins,
		LoginPerMin:   s.LoginPerMin,
		SecureCookie:  gin.Mode() == gin.ReleaseMode,
	})
	routes.PrintRoutes(router, cc.logger)

	srv := &http.Server{
		Addr:              ":" + s.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cc.logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	cc.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
