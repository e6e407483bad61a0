package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	api64 "github.com/antmrlt/API64"
	"github.com/antmrlt/API64/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		Long: `Starts the HTTP gateway. The shared secret is read from $API_KEY and the
process refuses to start without it. The storage directory is created when
missing. SIGINT or SIGTERM trigger a graceful shutdown.`,
		RunE: runServe,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString(config.FlagConfig)
	if err != nil {
		return err
	}

	cfg, err := config.Load(func(o *config.LoadOptions) {
		o.Path = path
		o.Flags = cmd.Flags()
	})
	if err != nil {
		return err
	}

	gw, err := api64.New(cfg, func(o *api64.Options) {
		o.LogOutput = cmd.OutOrStdout()
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw.Logger().Info("api64 listening",
		"version", version,
		"addr", ln.Addr().String(),
		"base_url", cfg.BaseURL(),
		"storage_backend", cfg.Storage.Backend,
		"storage_dir", cfg.Storage.Dir,
	)
	return serve(ctx, gw, ln)
}

// serve runs the gateway on ln until ctx is done, then drains in-flight
// requests.
func serve(ctx context.Context, gw *api64.Gateway, ln net.Listener) error {
	srv := &http.Server{
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		gw.Logger().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
