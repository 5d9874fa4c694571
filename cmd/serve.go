package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/speech-coach/httpapi"
)

const shutdownGrace = 30 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	a, err := build(ctx, c.cfg, c.log, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.cfg.Pipeline.LogLvl != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(a.svc, c.log, httpapi.Options{
		Name:           c.cfg.Pipeline.Name,
		Version:        c.cfg.Pipeline.Version,
		MaxUploadBytes: int64(c.cfg.Server.MaxUploadMB) << 20,
	})
	srv := &http.Server{
		Addr:              c.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.log.WithField("addr", srv.Addr).Infof("%s %s listening", c.cfg.Pipeline.Name, c.cfg.Pipeline.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	c.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		c.log.WithError(err).Warn("http shutdown")
	}
	if err := a.svc.Drain(sctx); err != nil {
		c.log.WithError(err).Warn("jobs still running at exit")
	}
	return nil
}
