package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kmorav/gom3u8/internal/api"
	"github.com/labstack/echo/v5"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := setup()
			if err != nil {
				return err
			}

			orch, st, err := wireEngine(appCtx)
			if err != nil {
				return err
			}
			defer st.Close()

			// Setup Signal Handling for Graceful Shutdown
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := echo.New()
			api.RegisterRoutes(e, ctx, appCtx, orch, st)

			srv := &http.Server{
				Addr:    ":" + appCtx.Config.Port,
				Handler: e,
			}

			go func() {
				<-ctx.Done()
				appCtx.Logger.Info("Shutting down...")

				sdCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(sdCtx)
			}()

			appCtx.Logger.Info("API listening on :%s", appCtx.Config.Port)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
