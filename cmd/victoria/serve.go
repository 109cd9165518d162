package main

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/http/api"
	"github.com/okian/victoria/internal/adapters/http/swagger"
	"github.com/okian/victoria/pkg/logger"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [file]...",
		Short: "Run the batch runner with the ops HTTP server until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Metrics.Addr = addr
			}
			return c.serve(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override metrics.addr")
	return cmd
}

func (c *cli) serve(ctx context.Context, files []string) error {
	svc, err := c.newService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	for _, f := range files {
		if _, err := svc.Submit(ctx, f); err != nil {
			c.log.Error(ctx, "submit failed", logger.String("path", f), logger.Error(err))
		}
	}

	if !c.cfg.Metrics.Enabled {
		c.log.Info(ctx, "ops server disabled; waiting for shutdown")
		<-ctx.Done()
		return nil
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc, svc).Register(mux)

	srv := &http.Server{
		Addr:              c.cfg.Metrics.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		c.log.Info(ctx, "starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "http server")
		}
	}
	c.log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	c.log.Info(ctx, "server stopped")
	return nil
}
