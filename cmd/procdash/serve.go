package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/procdash/internal/dashboard"
	"github.com/askiada/procdash/internal/store"
	"github.com/askiada/procdash/internal/watch"
	"github.com/askiada/procdash/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard",
		Long: `Serves the dashboard over HTTP until interrupted.

When watch.file is configured, the file is loaded at startup and reloaded
every time it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (overrides server.addr)")

	return cmd
}

func (a *app) newService() *dashboard.Service {
	datasets := store.NewMemoryStore(
		store.WithMaxItems[string, *dashboard.Dataset](a.cfg.Store.MaxDatasets),
		store.WithEvictHook(func(id string, ds *dashboard.Dataset) {
			a.logger.Info("dataset evicted", zap.String("id", id), zap.String("name", ds.Name))
		}),
	)

	return dashboard.NewService(a.logger, datasets,
		dashboard.WithConcurrency(a.cfg.Ingest.Concurrency),
		dashboard.WithGraphFile(a.cfg.Ingest.GraphFile),
		dashboard.WithPageSize(a.cfg.Server.PageSize),
	)
}

func (a *app) serve(ctx context.Context) error {
	svc := a.newService()

	srv, err := web.NewServer(a.logger, svc, web.WithMaxUploadBytes(a.cfg.Server.MaxUploadBytes))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe(gctx, web.HTTPConfig{
			Addr:            a.cfg.Server.Addr,
			ReadTimeout:     a.cfg.GetReadTimeout(),
			WriteTimeout:    a.cfg.GetWriteTimeout(),
			ShutdownTimeout: a.cfg.GetShutdownTimeout(),
		})
	})

	if a.cfg.Watch.File != "" {
		w := watch.New(a.logger, svc, a.cfg.Watch.File, a.cfg.Watch.Schema, watch.WithName(a.cfg.Watch.Name))
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	return g.Wait()
}
