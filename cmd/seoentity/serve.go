package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gingonic "github.com/gin-gonic/gin"
	"github.com/seoentity/seoentity/gin"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown after a signal.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It blocks until the context is cancelled
// or the process receives SIGINT or SIGTERM.
func (c *ServeCmd) Run(deps *Dependencies) error {
	gingonic.SetMode(gingonic.ReleaseMode)

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := gin.NewServer(deps.Runner, deps.Analyses, deps.Metrics, deps.Logger)
	if err := server.Open(c.Addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	fmt.Fprintf(deps.Stdout, "Serving on http://%s\n", server.Addr())
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	return nil
}
