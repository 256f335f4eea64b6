// Package shutdown centralizes signal handling for the daemon.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"classline/pkg/logger"
)

// Context returns a context that is canceled on SIGINT or SIGTERM.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-ch:
			logger.Info("shutdown_signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}
