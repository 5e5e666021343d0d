package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/musium/musium/internal/httpapi"
)

// NewServeCommand runs the daemon: HTTP API, playback engine, and an
// initial scan.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the musium daemon.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := initContainer()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if n, err := c.Store.SweepStaleListens(ctx, time.Now()); err != nil {
		c.Logger.Warning("serve: sweep stale listens: %v", err)
	} else if n > 0 {
		c.Logger.Info("serve: swept %d stale listen rows left open by an unclean shutdown", n)
	}

	c.StartPlayer(ctx)
	c.Scanner.Start(ctx)

	srv := &http.Server{
		Addr:    c.Config.Listen,
		Handler: httpapi.NewRouter(c),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	c.Logger.Info("serve: listening on %s", c.Config.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
