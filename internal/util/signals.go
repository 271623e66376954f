package util

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// exitFunc is replaced in tests
var exitFunc = os.Exit

// SignalContext returns a context cancelled on the first SIGINT or SIGTERM.
// The run then unwinds through its fail-fast path; a second signal exits
// immediately with status 130. stop releases the signal handler.
func SignalContext(parent context.Context, logger *slog.Logger) (ctx context.Context, stop func()) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal, stopping run", "signal", sig.String())
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("received second shutdown signal, forcing exit", "signal", sig.String())
			exitFunc(130)
		case <-done:
		}
	}()

	stop = func() {
		signal.Stop(sigCh)
		select {
		case <-done:
		default:
			close(done)
		}
		cancel()
	}
	return ctx, stop
}
