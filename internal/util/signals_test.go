//go:build unix

package util

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestSignalContext_Stop(t *testing.T) {
	ctx, stop := SignalContext(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	stop()
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("stop did not cancel the context")
	}
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent, nil)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not propagate")
	}
}

func TestSignalContext_Signals(t *testing.T) {
	var exitCode atomic.Int32
	exited := make(chan struct{})
	exitFunc = func(code int) {
		exitCode.Store(int32(code))
		close(exited)
	}
	defer func() { exitFunc = os.Exit }()

	// written only by the signal goroutine; read after exited closes
	var logs bytes.Buffer
	ctx, stop := SignalContext(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first signal did not cancel the context")
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not force an exit")
	}
	if exitCode.Load() != 130 {
		t.Errorf("expected exit code 130, got %d", exitCode.Load())
	}

	out := logs.String()
	if !strings.Contains(out, "received shutdown signal") {
		t.Errorf("first signal not logged: %q", out)
	}
	if !strings.Contains(out, "received second shutdown signal") || !strings.Contains(out, "signal=interrupt") {
		t.Errorf("second signal not logged: %q", out)
	}
}
