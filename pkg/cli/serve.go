package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/cli/config"
	controller "github.com/secmon-lab/incidex/pkg/controller/http"
	"github.com/secmon-lab/incidex/pkg/utils/apperr"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func cmdServe(r *runner) *cli.Command {
	var serverCfg config.Server

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web dashboard",
		Flags: serverCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting incidex dashboard",
				slog.Any("server", serverCfg),
				slog.Any("backend", r.backendCfg),
				slog.Any("slack", r.slackCfg),
			)

			store, api, err := r.newStore()
			if err != nil {
				return err
			}
			defer store.Wait()

			server, err := controller.NewServer(ctx, serverCfg.Addr, store, api,
				controller.WithDisplay(r.display),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
				}
				return nil
			})

			// Initial load. A failure stays in the store and is shown on the
			// dashboard with a retry button.
			eg.Go(func() error {
				if err := store.Refresh(ctx); err != nil {
					apperr.Handle(ctx, "initial incident fetch failed", err)
				}
				return nil
			})

			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
